package handlers

import (
	"net/http"

	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	page := pageParam(c)

	notifications, total, err := h.notifications.List(c.Request().Context(), currentUserID, page)
	if err != nil {
		return err
	}
	return paginated(c, "notifications", notifications, page, services.NotificationsPerPage, total)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	grouped, err := h.notifications.Grouped(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	unreadCount, err := h.notifications.UnreadCount(currentUserID)
	if err != nil {
		return err
	}

	return success(c, http.StatusOK, echo.Map{"notifications": grouped, "unreadCount": unreadCount})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(currentUserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	notification, err := h.notifications.MarkAsRead(currentUserID, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"notification": notification})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	updated, err := h.notifications.MarkAllAsRead(currentUserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated})
}

// DeleteNotification deletes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(currentUserID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
