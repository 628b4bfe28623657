package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users and their profiles
type UserHandler struct {
	accounts    *services.AccountService
	search      *services.SearchService
	friendships *services.FriendshipService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts *services.AccountService, search *services.SearchService, friendships *services.FriendshipService) *UserHandler {
	return &UserHandler{accounts: accounts, search: search, friendships: friendships}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteUser)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// GetUser returns another user's profile with their friend count
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(id)
	if err != nil {
		return err
	}
	friends, err := h.friendships.FriendsCount(id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"profile": profile, "friends_count": friends})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"profile": profile})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	profile, err := h.accounts.UpdateProfile(userID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"profile": profile})
}

// DeleteUser deletes the authenticated user with everything they own
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchUsers finds profiles by username or bio. ?details=true adds friend
// counts and the bio placeholder.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")

	if c.QueryParam("details") == "true" {
		results, err := h.search.SearchWithDetails(query)
		if err != nil {
			return err
		}
		return success(c, http.StatusOK, echo.Map{"users": results})
	}

	profiles, err := h.search.Search(query)
	if err != nil {
		return err
	}
	users := make([]models.UserCompact, 0, len(profiles))
	for i := range profiles {
		users = append(users, profiles[i].ToCompact())
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
