package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/goroutine"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
)

type fakeBroadcaster struct {
	mu    sync.Mutex
	users []uuid.UUID
	err   error
}

func (f *fakeBroadcaster) Notification(userID uuid.UUID, _ *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	keys   []string
	values [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.keys = append(f.keys, key)
	f.values = append(f.values, raw)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type failingNotifications struct {
	repository.NotificationRepository
}

func (failingNotifications) Create(context.Context, *entity.Notification) error {
	return errors.New("db down")
}

var payload = repository.NotificationPayload{
	Type:    valueobject.NotificationBidAccepted,
	Title:   "Ваша ставка принята!",
	Message: "Ставка по грузу принята",
	Link:    "/transactions/1",
}

func TestDeliver_AllChannels(t *testing.T) {
	logger.Silence()
	store := memory.NewStore()
	hub := &fakeBroadcaster{}
	pub := &fakePublisher{}
	runner := goroutine.NewRecoveryHandler(logger.Log)
	d := NewDispatcher(store.Notifications(), hub, pub, runner)
	userID := uuid.New()

	d.Deliver(context.Background(), userID, payload)
	require.NoError(t, runner.Wait(context.Background()))

	items, err := store.Notifications().List(context.Background(), userID, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ваша ставка принята!", items[0].Title)
	assert.False(t, items[0].IsRead)

	assert.Equal(t, []uuid.UUID{userID}, hub.users)
	require.Len(t, pub.keys, 1)
	assert.Equal(t, userID.String(), pub.keys[0])

	var event Event
	require.NoError(t, json.Unmarshal(pub.values[0], &event))
	assert.Equal(t, items[0].ID, event.NotificationID)
	assert.Equal(t, payload, event.Payload)
}

func TestDeliver_ChannelFailuresAreIsolated(t *testing.T) {
	logger.Silence()
	store := memory.NewStore()
	hub := &fakeBroadcaster{err: errors.New("hub stopped")}
	pub := &fakePublisher{}
	runner := goroutine.NewRecoveryHandler(logger.Log)
	d := NewDispatcher(store.Notifications(), hub, pub, runner)
	userID := uuid.New()

	d.Deliver(context.Background(), userID, payload)
	require.NoError(t, runner.Wait(context.Background()))

	count, err := store.Notifications().CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, pub.keys, 1)
}

func TestDeliver_StoreFailureSkipsPush(t *testing.T) {
	logger.Silence()
	hub := &fakeBroadcaster{}
	pub := &fakePublisher{}
	runner := goroutine.NewRecoveryHandler(logger.Log)
	d := NewDispatcher(failingNotifications{}, hub, pub, runner)

	d.Deliver(context.Background(), uuid.New(), payload)
	require.NoError(t, runner.Wait(context.Background()))

	assert.Empty(t, hub.users)
	assert.Empty(t, pub.keys)
}

func TestDeliver_NilPublisher(t *testing.T) {
	logger.Silence()
	store := memory.NewStore()
	runner := goroutine.NewRecoveryHandler(logger.Log)
	d := NewDispatcher(store.Notifications(), &fakeBroadcaster{}, nil, runner)

	d.Deliver(context.Background(), uuid.New(), payload)
	assert.NoError(t, runner.Wait(context.Background()))
}
