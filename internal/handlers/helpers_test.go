package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func render(t *testing.T, err error) (int, map[string]any, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.ErrorLevel)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(zap.New(core))(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body, logs
}

func TestErrorHandlerRendersAppErrors(t *testing.T) {
	code, body, logs := render(t, apperror.Invalid("post_id", "can like a post only once"))

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "Validation failed", errBody["message"])
	assert.Equal(t, []any{"can like a post only once"}, errBody["errors"])
	assert.Zero(t, logs.Len())

	code, _, _ = render(t, apperror.NotFound("Post not found"))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	code, body, logs := render(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "Something went wrong", errBody["message"])
	assert.Equal(t, 1, logs.Len())
}

func TestErrorHandlerPassesHTTPErrors(t *testing.T) {
	code, body, _ := render(t, echo.NewHTTPError(http.StatusBadRequest, "Invalid id"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid id", body["error"].(map[string]any)["message"])
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Zero(t, getUserIDFromContext(c))

	_, err := requireUser(c)
	assert.Error(t, err)

	c.Set("user", &models.JwtCustomClaims{UserID: 42})
	assert.Equal(t, uint(42), getUserIDFromContext(c))
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("12")
	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := parseIDParam(c, "id")
		assert.Error(t, err, bad)
	}
}
