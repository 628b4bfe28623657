package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/handlers"
	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/realtime"
	"github.com/anonto42/weabotalk/backend/internal/testutil"
	"github.com/anonto42/weabotalk/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenMailer struct {
	mu     sync.Mutex
	tokens map[string]string // kind+email -> token
}

func (m *tokenMailer) put(kind, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[kind+":"+to] = token
	return nil
}

func (m *tokenMailer) SendConfirmation(to, token string) error  { return m.put("confirm", to, token) }
func (m *tokenMailer) SendResetPassword(to, token string) error { return m.put("reset", to, token) }
func (m *tokenMailer) SendUnlock(to, token string) error        { return m.put("unlock", to, token) }

func (m *tokenMailer) token(kind, to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[kind+":"+to]
}

type app struct {
	e      *echo.Echo
	mailer *tokenMailer
}

func newApp(t *testing.T) *app {
	t.Helper()
	log := zap.NewNop()
	v := validators.NewValidator()

	e := echo.New()
	e.Validator = v
	e.HTTPErrorHandler = handlers.ErrorHandler(log)

	dispatcher := jobs.NewDispatcher(log)
	m := &tokenMailer{tokens: map[string]string{}}
	err := SetupRoutes(e, Deps{
		DB:          testutil.NewDB(t),
		Images:      &testutil.MemoryImages{},
		Queue:       jobs.NewInlineQueue(dispatcher),
		Dispatcher:  dispatcher,
		Broadcaster: realtime.Nop{},
		Mailer:      m,
		Validator:   v,
		JWTSecret:   "test-secret",
		Log:         log,
	})
	require.NoError(t, err)
	return &app{e: e, mailer: m}
}

type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Meta    map[string]any             `json:"meta"`
	Error   struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	} `json:"error"`
}

func (a *app) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode(t *testing.T, raw json.RawMessage, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, into))
}

// signUp registers, confirms and signs in, returning the user id and JWT.
func (a *app) signUp(t *testing.T, email string) (uint, string) {
	t.Helper()
	code, _ := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": email, "password": "password123", "password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, code)

	token := a.mailer.token("confirm", email)
	require.NotEmpty(t, token)
	code, _ = a.do(t, http.MethodGet, "/api/v1/auth/confirm?token="+token, "", nil)
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	var jwt string
	var user struct {
		ID uint `json:"id"`
	}
	decode(t, env.Data["token"], &jwt)
	decode(t, env.Data["user"], &user)
	return user.ID, jwt
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupValidationAndConfirmation(t *testing.T) {
	a := newApp(t)

	code, env := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "not-an-email", "password": "password123", "password_confirmation": "different",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)
	assert.Len(t, env.Error.Errors, 2)

	code, _ = a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "ann@example.com", "password": "password123", "password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "ann@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, env.Error.Message, "confirm your email")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)
	code, env := a.do(t, http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Missing Authorization header", env.Error.Message)
}

func TestPostLikeNotificationFlow(t *testing.T) {
	a := newApp(t)
	annID, ann := a.signUp(t, "ann@example.com")
	_, bob := a.signUp(t, "bob@example.com")

	code, env := a.do(t, http.MethodPost, "/api/v1/posts", ann, map[string]string{
		"title": "Hello world", "content": "First post",
	})
	require.Equal(t, http.StatusCreated, code)
	var post struct {
		ID     uint   `json:"id"`
		UserID uint   `json:"user_id"`
		Status string `json:"status"`
	}
	decode(t, env.Data["post"], &post)
	assert.Equal(t, annID, post.UserID)
	assert.Equal(t, "published", post.Status)

	likePath := "/api/v1/posts/" + itoa(post.ID) + "/like"
	code, _ = a.do(t, http.MethodPost, likePath, bob, nil)
	require.Equal(t, http.StatusCreated, code)
	code, env = a.do(t, http.MethodPost, likePath, bob, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"can like a post only once"}, env.Error.Errors)

	code, env = a.do(t, http.MethodGet, "/api/v1/notifications", ann, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), env.Meta["totalItems"])
	var notifications []struct {
		NotificationType string `json:"notification_type"`
		Actor            struct {
			Username string `json:"username"`
		} `json:"actor"`
	}
	decode(t, env.Data["notifications"], &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "like_created", notifications[0].NotificationType)
	assert.Equal(t, "bob", notifications[0].Actor.Username)

	code, env = a.do(t, http.MethodGet, "/api/v1/feed", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var feed []struct {
		ID         uint  `json:"id"`
		LikesCount int64 `json:"likes_count"`
		IsLiked    bool  `json:"is_liked"`
	}
	decode(t, env.Data["posts"], &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, int64(1), feed[0].LikesCount)
	assert.True(t, feed[0].IsLiked)
}

func TestDraftPublishFlow(t *testing.T) {
	a := newApp(t)
	_, ann := a.signUp(t, "ann@example.com")
	_, bob := a.signUp(t, "bob@example.com")

	code, env := a.do(t, http.MethodPost, "/api/v1/drafts", ann, map[string]string{
		"title": "Work in progress", "content": "draft body",
	})
	require.Equal(t, http.StatusOK, code)
	var draft struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decode(t, env.Data["draft"], &draft)
	assert.Equal(t, "draft", draft.Status)

	code, _ = a.do(t, http.MethodGet, "/api/v1/posts/"+itoa(draft.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	publish := "/api/v1/drafts/" + itoa(draft.ID) + "/publish"
	code, _ = a.do(t, http.MethodPost, publish, ann, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = a.do(t, http.MethodPost, publish, ann, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Draft not found", env.Error.Message)

	code, _ = a.do(t, http.MethodGet, "/api/v1/posts/"+itoa(draft.ID), bob, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestFriendshipAndSearchFlow(t *testing.T) {
	a := newApp(t)
	annID, ann := a.signUp(t, "ann@example.com")
	bobID, bob := a.signUp(t, "bob@example.com")

	code, env := a.do(t, http.MethodPost, "/api/v1/friends/request", bob, map[string]uint{"friend_id": annID})
	require.Equal(t, http.StatusCreated, code)
	var friendship struct {
		ID uint `json:"id"`
	}
	decode(t, env.Data["friendship"], &friendship)

	code, _ = a.do(t, http.MethodPost, "/api/v1/friends/request", bob, map[string]uint{"friend_id": annID})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.do(t, http.MethodPut, "/api/v1/friends/request/"+itoa(friendship.ID)+"/accept", bob, nil)
	assert.Equal(t, http.StatusForbidden, code, "only the target accepts")
	code, _ = a.do(t, http.MethodPut, "/api/v1/friends/request/"+itoa(friendship.ID)+"/accept", ann, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(t, http.MethodGet, "/api/v1/friends", ann, nil)
	require.Equal(t, http.StatusOK, code)
	var friends []struct {
		ID uint `json:"id"`
	}
	decode(t, env.Data["friends"], &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, bobID, friends[0].ID)

	code, env = a.do(t, http.MethodGet, "/api/v1/users/search?q=an&details=true", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var results []struct {
		Username     string `json:"username"`
		Bio          string `json:"bio"`
		FriendsCount int64  `json:"friends_count"`
	}
	decode(t, env.Data["users"], &results)
	require.Len(t, results, 1)
	assert.Equal(t, "ann", results[0].Username)
	assert.Equal(t, "No bio yet", results[0].Bio)
	assert.Equal(t, int64(1), results[0].FriendsCount)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	a := newApp(t)
	code, env := a.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not Found", env.Error.Message)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
