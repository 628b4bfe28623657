package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles emoji reactions on posts
type ReactionHandler struct {
	reactions *services.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

// RegisterReactionRoutes registers reaction routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/reactions", h.GetAllowedReactions)
	g.POST("/posts/:id/reactions", h.AddReaction)
	g.POST("/posts/:id/reactions/toggle", h.ToggleReaction)
	g.GET("/posts/:id/reactions", h.GetReactions)
	g.DELETE("/reactions/:id", h.RemoveReaction)
}

// GetAllowedReactions lists the reaction types in display order
func (h *ReactionHandler) GetAllowedReactions(c echo.Context) error {
	return success(c, http.StatusOK, echo.Map{"reactions": models.AllowedReactions})
}

// AddReaction reacts to a post
func (h *ReactionHandler) AddReaction(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reaction, err := h.reactions.Add(c.Request().Context(), userID, postID, req.ReactionType)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"reaction": reaction})
}

// ToggleReaction adds the reaction, or removes it when the caller already has it
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reaction, added, err := h.reactions.Toggle(c.Request().Context(), userID, postID, req.ReactionType)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"reaction": reaction, "added": added})
}

// GetReactions counts a post's reactions by type
func (h *ReactionHandler) GetReactions(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.reactions.Summary(userID, postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"reactions": summary})
}

// RemoveReaction deletes one of the caller's reactions
func (h *ReactionHandler) RemoveReaction(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.reactions.Remove(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
