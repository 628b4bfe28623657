// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database private to t, with foreign keys on.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "weabotalk.db")
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := config.OpenGorm(sqlite.Open(dsn), true)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a confirmed user with a profile named username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Username: username}).Error)
	return user
}

// CreatePost inserts a post owned by userID with the given status.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, status models.PostStatus) *models.Post {
	t.Helper()

	post := &models.Post{UserID: userID, Title: "A post title", Content: "Some content", Status: status}
	require.NoError(t, db.Create(post).Error)
	return post
}
