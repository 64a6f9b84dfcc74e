package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentlink/talentlink/internal/middleware"
	"github.com/talentlink/talentlink/internal/services"
	appErrors "github.com/talentlink/talentlink/pkg/errors"
	"github.com/talentlink/talentlink/pkg/response"
)

const defaultCleanupDays = 30

// NotificationHandler exposes the notification REST surface.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type createNotificationRequest struct {
	Title   string         `json:"title" validate:"required"`
	Message string         `json:"message" validate:"required"`
	Type    string         `json:"notification_type" validate:"required"`
	Link    string         `json:"link"`
	Data    map[string]any `json:"data"`
}

type systemNotificationRequest struct {
	Title       string         `json:"title" validate:"required"`
	Message     string         `json:"message" validate:"required"`
	Link        string         `json:"link"`
	Data        map[string]any `json:"data"`
	TargetUsers []string       `json:"target_users"`
}

type cleanupRequest struct {
	Days int `json:"days" validate:"omitempty,min=1"`
}

// List returns the caller's notifications, newest first. Supports
// notification_type and unread query filters plus limit/offset pagination.
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.notifications.List(c.Request.Context(), services.ListNotificationsInput{
		UserID: c.GetString(middleware.CtxUserIDKey),
		Type:   c.Query("notification_type"),
		Unread: parseBoolQuery(c, "unread"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items)
}

// Create stores a notification for the authenticated user.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dto, err := h.notifications.Create(c.Request.Context(), services.CreateNotificationInput{
		UserID:  c.GetString(middleware.CtxUserIDKey),
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Link:    req.Link,
		Data:    req.Data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, dto)
}

// UnreadCount reports how many of the caller's notifications are unread.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"unread_count": count})
}

// Statistics aggregates the caller's notification counts by read state and type.
func (h *NotificationHandler) Statistics(c *gin.Context) {
	stats, err := h.notifications.Statistics(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats)
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	dto, err := h.notifications.MarkRead(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notifications.MarkAllRead(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Count(c, "All notifications marked as read", count)
}

// Delete removes a single notification owned by the caller.
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Notification deleted")
}

// Broadcast sends a system notification to the targeted users, or to every
// active user when no targets are given. Admin only.
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req systemNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	count, err := h.notifications.CreateSystem(c.Request.Context(), services.SystemNotificationInput{
		Title:         req.Title,
		Message:       req.Message,
		Link:          req.Link,
		Data:          req.Data,
		TargetUserIDs: req.TargetUsers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Count(c, "System notification sent", count)
}

// Cleanup deletes notifications older than the requested number of days,
// regardless of read state. Admin only.
func (h *NotificationHandler) Cleanup(c *gin.Context) {
	req := cleanupRequest{Days: defaultCleanupDays}
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
		if req.Days <= 0 {
			response.Error(c, appErrors.NewValidation(map[string][]string{
				"days": {"Ensure this value is greater than or equal to 1."},
			}))
			return
		}
	}

	count, err := h.notifications.CleanupOlderThan(c.Request.Context(), req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Count(c, "Old notifications cleaned up", count)
}
