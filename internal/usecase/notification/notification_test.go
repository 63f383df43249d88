package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/notification"
)

func seed(t *testing.T, store *memory.Store, userID uuid.UUID, count int) []*entity.Notification {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	items := make([]*entity.Notification, 0, count)
	for i := 0; i < count; i++ {
		n := &entity.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      valueobject.NotificationNewBid,
			Title:     "Новая ставка на ваш груз",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Notifications().Create(context.Background(), n))
		items = append(items, n)
	}
	return items
}

func TestList(t *testing.T) {
	store := memory.NewStore()
	uc := notification.NewNotificationUseCase(store.Notifications())
	ctx := context.Background()
	owner := uuid.New()
	items := seed(t, store, owner, 3)
	seed(t, store, uuid.New(), 2)

	page, err := uc.List(ctx, owner, notification.ListInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.UnreadCount)
	assert.Equal(t, items[2].ID, page.Items[0].ID)

	require.NoError(t, uc.MarkAsRead(ctx, owner, items[0].ID))
	page, err = uc.List(ctx, owner, notification.ListInput{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.UnreadCount)

	page, err = uc.List(ctx, owner, notification.ListInput{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, items[1].ID, page.Items[0].ID)
}

func TestOwnerOnly(t *testing.T) {
	store := memory.NewStore()
	uc := notification.NewNotificationUseCase(store.Notifications())
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	items := seed(t, store, owner, 2)

	assert.ErrorIs(t, uc.MarkAsRead(ctx, stranger, items[0].ID), apperror.ErrNotificationNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, stranger, items[0].ID), apperror.ErrNotificationNotFound)

	require.NoError(t, uc.MarkAllAsRead(ctx, stranger))
	page, err := uc.List(ctx, owner, notification.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.UnreadCount)

	require.NoError(t, uc.MarkAllAsRead(ctx, owner))
	require.NoError(t, uc.Delete(ctx, owner, items[1].ID))
	page, err = uc.List(ctx, owner, notification.ListInput{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Zero(t, page.UnreadCount)
}
