package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// TokenTTL is how long an issued JWT stays valid.
const TokenTTL = 72 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts  *services.AccountService
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService, jwtSecret string) *AuthHandler {
	return &AuthHandler{accounts: accounts, jwtSecret: jwtSecret}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.GET("/confirm", h.Confirm)
	g.GET("/unlock", h.Unlock)
	g.POST("/password", h.ForgotPassword)
	g.PUT("/password", h.ResetPassword)
}

// Signup registers a user. The account can sign in once the email is confirmed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return success(c, http.StatusCreated, echo.Map{
		"user":    user,
		"message": "A confirmation link has been sent to your email address",
	})
}

// SignIn authenticates with email and password and returns a JWT
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}

	return success(c, http.StatusOK, echo.Map{"token": token, "user": user})
}

// Confirm confirms the email behind ?token=
func (h *AuthHandler) Confirm(c echo.Context) error {
	user, err := h.accounts.Confirm(c.QueryParam("token"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": user})
}

// Unlock lifts the sign-in lock behind ?token=
func (h *AuthHandler) Unlock(c echo.Context) error {
	if err := h.accounts.Unlock(c.QueryParam("token")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Your account has been unlocked"})
}

// ForgotPassword mails a reset link. It answers the same for unknown emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return success(c, http.StatusOK, echo.Map{
		"message": "If your email address exists in our database, you will receive a password recovery link",
	})
}

// ResetPassword sets a new password using a reset token
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ResetPassword(req.Token, req.Password); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Your password has been changed"})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
