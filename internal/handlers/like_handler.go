package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.GET("/posts/:id/likes", h.GetLikes)
}

// LikePost likes a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	like, err := h.likes.Like(c.Request().Context(), userID, postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"like": like})
}

// UnlikePost removes the caller's like
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.likes.Unlike(c.Request().Context(), userID, postID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLikes returns the like count and whether the caller likes the post
func (h *LikeHandler) GetLikes(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	count, err := h.likes.Count(userID, postID)
	if err != nil {
		return err
	}
	hasLiked, err := h.likes.HasLiked(userID, postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post_id": postID, "likes_count": count, "has_liked": hasLiked})
}
