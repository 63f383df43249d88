package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/notification"
)

type SendMessageRequest struct {
	TransactionID uuid.UUID `json:"transactionId" binding:"required"`
	Content       string    `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transactionId"`
	SenderID      uuid.UUID `json:"senderId"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		SenderID:      m.SenderID,
		Content:       m.Content,
		CreatedAt:     m.CreatedAt,
	}
}

func ToMessageResponses(items []*entity.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		responses = append(responses, ToMessageResponse(m))
	}
	return responses
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int                    `json:"unreadCount"`
}

func ToNotificationListResponse(p *notification.Page) NotificationListResponse {
	items := make([]NotificationResponse, 0, len(p.Items))
	for _, n := range p.Items {
		items = append(items, ToNotificationResponse(n))
	}
	return NotificationListResponse{Items: items, UnreadCount: p.UnreadCount}
}
