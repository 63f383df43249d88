package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entity.Message, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
