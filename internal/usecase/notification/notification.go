package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListInput struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

type Page struct {
	Items       []*entity.Notification
	UnreadCount int
}

// NotificationUseCase управляет уведомлениями владельца. Чужие уведомления
// для пользователя не существуют: репозиторий фильтрует по userID.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
}

func NewNotificationUseCase(notifications repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID uuid.UUID, input ListInput) (*Page, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	items, err := uc.notifications.List(ctx, userID, input.Limit, input.Offset, input.UnreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := uc.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, UnreadCount: unread}, nil
}

func (uc *NotificationUseCase) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return uc.notifications.MarkAsRead(ctx, id, userID)
}

func (uc *NotificationUseCase) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return uc.notifications.MarkAllAsRead(ctx, userID)
}

func (uc *NotificationUseCase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return uc.notifications.Delete(ctx, id, userID)
}
