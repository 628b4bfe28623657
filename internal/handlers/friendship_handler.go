package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/request", h.SendFriendRequest)
	g.GET("/friends/requests/pending", h.GetPendingFriendRequests)
	g.GET("/friends/requests/sent", h.GetSentFriendRequests)
	g.PUT("/friends/request/:id/accept", h.AcceptFriendRequest)
	g.PUT("/friends/request/:id/reject", h.RejectFriendRequest)
	g.PUT("/friends/request/:id/block", h.BlockFriendship)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.DeleteFriend) // Unfriend, by friendship id
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	friendship, err := h.friendships.Request(c.Request().Context(), userID, req.FriendID)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"friendship": friendship})
}

// GetPendingFriendRequests lists requests waiting on the caller
func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	requests, err := h.friendships.PendingRequests(userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"requests": requests})
}

// GetSentFriendRequests lists the caller's unanswered requests
func (h *FriendshipHandler) GetSentFriendRequests(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	requests, err := h.friendships.SentRequests(userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"requests": requests})
}

// AcceptFriendRequest accepts a request addressed to the caller
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	friendship, err := h.friendships.Accept(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"friendship": friendship})
}

// RejectFriendRequest rejects a request addressed to the caller
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.friendships.Reject(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// BlockFriendship blocks the other side of a friendship the caller is part of
func (h *FriendshipHandler) BlockFriendship(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	friendship, err := h.friendships.Block(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"friendship": friendship})
}

// GetFriends lists the caller's accepted friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	friends, err := h.friendships.Friends(userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"friends": friends})
}

// DeleteFriend removes one of the caller's friendships
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.friendships.Remove(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
