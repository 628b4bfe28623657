package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ENV", "production")
	t.Setenv("MONGO_DATABASE", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "weabotalk", cfg.MongoDatabase)
}
