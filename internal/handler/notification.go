package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/zonehub/zonehub/internal/service"
)

// NotificationHandler exposes the per-user inbox.  The live websocket
// push is the primary delivery channel; these endpoints back it with
// listing, read-marking and the unread-count polling fallback.
type NotificationHandler struct {
    Notifications *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
    if notifications == nil {
        panic("nil service passed to NewNotificationHandler")
    }
    return &NotificationHandler{Notifications: notifications}
}

// List handles GET /v1/notifications.  The optional ?unread=true query
// parameter filters to unread rows only.
func (h *NotificationHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    unreadOnly := c.QueryParam("unread") == "true"
    rows, err := h.Notifications.List(c.Request().Context(), userID, unreadOnly)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, rows)
}

// MarkRead handles PUT /v1/notifications/:id/read.  Re-marking an
// already-read row succeeds; rows belonging to someone else return 403.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
    }
    if err := h.Notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PUT /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Notifications.MarkAllRead(c.Request().Context(), userID); err != nil {
        return domainError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// UnreadCount handles GET /v1/notifications/unread-count, the polling
// fallback for clients without a live websocket.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    n, err := h.Notifications.UnreadCount(c.Request().Context(), userID)
    if err != nil {
        return domainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
