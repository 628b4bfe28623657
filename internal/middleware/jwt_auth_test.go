package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, userID uint, expires time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:           userID,
		Email:            "ann@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func run(t *testing.T, req *http.Request) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	err := JWTAuthMiddleware(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return c, err
}

func status(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "want *echo.HTTPError, got %v", err)
	return he.Code
}

func TestJWTAuthMiddlewareAcceptsBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, secret, 7, time.Now().Add(time.Hour)))

	c, err := run(t, req)
	require.NoError(t, err)
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestJWTAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?token="+sign(t, secret, 7, time.Now().Add(time.Hour)), nil)

	_, err := run(t, req)
	require.NoError(t, err)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed header", "Token abc"},
		{"wrong key", "Bearer " + sign(t, "other", 7, time.Now().Add(time.Hour))},
		{"expired", "Bearer " + sign(t, secret, 7, time.Now().Add(-time.Minute))},
		{"no user", "Bearer " + sign(t, secret, 0, time.Now().Add(time.Hour))},
		{"garbage", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := run(t, req)
			assert.Equal(t, http.StatusUnauthorized, status(t, err))
		})
	}
}
