package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type NotificationPayload struct {
	Type    valueobject.NotificationType `json:"type"`
	Title   string                       `json:"title"`
	Message string                       `json:"message"`
	Link    string                       `json:"link"`
}

// Notifier - исходящий канал уведомлений. Deliver не блокирует вызывающего
// и не сообщает об ошибках доставки.
type Notifier interface {
	Deliver(ctx context.Context, userID uuid.UUID, payload NotificationPayload)
}
