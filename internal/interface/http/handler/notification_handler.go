package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/notification"
)

type NotificationHandler struct {
	notificationUC *notification.NotificationUseCase
}

func NewNotificationHandler(notificationUC *notification.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{notificationUC: notificationUC}
}

// List обрабатывает GET /api/notifications?limit=&offset=&unread_only=
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	page, err := h.notificationUC.List(c.Request.Context(), userID, notification.ListInput{
		Limit:      parseIntQuery(c, "limit", 0),
		Offset:     parseIntQuery(c, "offset", 0),
		UnreadOnly: c.Query("unread_only") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToNotificationListResponse(page))
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	if err := h.notificationUC.MarkAsRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "isRead": true})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	if err := h.notificationUC.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	if err := h.notificationUC.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
