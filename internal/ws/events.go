package ws

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
)

const EventChatMessage = "chat_message"

// Events публикует доменные события в хаб в том же JSON-формате, что и REST API.
type Events struct {
	hub *Hub
}

func NewEvents(hub *Hub) *Events {
	return &Events{hub: hub}
}

func (e *Events) Notification(userID uuid.UUID, n *entity.Notification) error {
	return e.hub.BroadcastToUser(userID, EventNotification, dto.ToNotificationResponse(n))
}

func (e *Events) ChatMessage(userID uuid.UUID, m *entity.Message) error {
	return e.hub.BroadcastToUser(userID, EventChatMessage, dto.ToMessageResponse(m))
}
