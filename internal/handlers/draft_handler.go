package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// DraftHandler handles the caller's drafts
type DraftHandler struct {
	drafts *services.DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(drafts *services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// RegisterDraftRoutes registers draft routes
func (h *DraftHandler) RegisterDraftRoutes(g *echo.Group) {
	g.GET("/drafts", h.GetDrafts)
	g.POST("/drafts", h.SaveDraft)
	g.POST("/drafts/:id/publish", h.PublishDraft)
	g.DELETE("/drafts/:id", h.DeleteDraft)
}

// GetDrafts lists the caller's drafts
func (h *DraftHandler) GetDrafts(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	drafts, err := h.drafts.Drafts(userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"drafts": drafts})
}

// SaveDraft creates a draft, or updates the one named by "id"
func (h *DraftHandler) SaveDraft(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.SaveDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	draft, err := h.drafts.SaveDraft(userID, models.PostFields{Title: req.Title, Content: req.Content}, req.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"draft": draft})
}

// PublishDraft publishes one of the caller's drafts
func (h *DraftHandler) PublishDraft(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.drafts.PublishDraft(userID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

// DeleteDraft deletes one of the caller's drafts
func (h *DraftHandler) DeleteDraft(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.drafts.DeleteDraft(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
