package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/chat"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) ChatMessage(userID uuid.UUID, message *entity.Message) error {
	args := m.Called(userID, message)
	return args.Error(0)
}

type recordingNotifier struct {
	users []uuid.UUID
	sent  []repository.NotificationPayload
}

func (n *recordingNotifier) Deliver(_ context.Context, userID uuid.UUID, payload repository.NotificationPayload) {
	n.users = append(n.users, userID)
	n.sent = append(n.sent, payload)
}

type env struct {
	store    *memory.Store
	shipper  *entity.User
	carrier  *entity.User
	outsider *entity.User
	deal     *entity.Transaction
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	e := &env{
		store:    store,
		shipper:  &entity.User{ID: uuid.New(), Email: "s@example.kz", FirstName: "Нурлан", LastName: "Ахметов", Role: valueobject.RoleShipper},
		carrier:  &entity.User{ID: uuid.New(), Email: "c@example.kz", Role: valueobject.RoleCarrier},
		outsider: &entity.User{ID: uuid.New(), Email: "o@example.kz", Role: valueobject.RoleCarrier},
	}
	for _, u := range []*entity.User{e.shipper, e.carrier, e.outsider} {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	e.deal = &entity.Transaction{
		ID:        uuid.New(),
		CargoID:   uuid.New(),
		BidID:     uuid.New(),
		ShipperID: e.shipper.ID,
		CarrierID: e.carrier.ID,
		Status:    valueobject.TransactionStatusConfirmed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Transactions().Create(ctx, e.deal))
	return e
}

func TestSend_PushesToBothPartiesAndNotifies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	broadcaster := &mockBroadcaster{}
	broadcaster.On("ChatMessage", e.shipper.ID, mock.AnythingOfType("*entity.Message")).Return(nil).Once()
	broadcaster.On("ChatMessage", e.carrier.ID, mock.AnythingOfType("*entity.Message")).Return(nil).Once()
	notifier := &recordingNotifier{}
	uc := chat.NewChatUseCase(e.store.Users(), e.store.Transactions(), e.store.Messages(), broadcaster, notifier)

	msg, err := uc.Send(ctx, e.shipper.ID, e.deal.ID, "  Погрузка завтра в 9:00  ")
	require.NoError(t, err)
	assert.Equal(t, "Погрузка завтра в 9:00", msg.Content)
	broadcaster.AssertExpectations(t)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, e.carrier.ID, notifier.users[0])
	assert.Equal(t, valueobject.NotificationNewMessage, notifier.sent[0].Type)
	assert.Equal(t, "Нурлан Ахметов: Погрузка завтра в 9:00", notifier.sent[0].Message)

	history, err := uc.List(ctx, e.carrier.ID, e.deal.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
}

func TestSend_BroadcastFailureIsNotFatal(t *testing.T) {
	logger.Silence()
	e := newEnv(t)
	broadcaster := &mockBroadcaster{}
	broadcaster.On("ChatMessage", mock.Anything, mock.Anything).Return(errors.New("hub closed"))
	notifier := &recordingNotifier{}
	uc := chat.NewChatUseCase(e.store.Users(), e.store.Transactions(), e.store.Messages(), broadcaster, notifier)

	_, err := uc.Send(context.Background(), e.carrier.ID, e.deal.ID, "Выехал")
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, e.shipper.ID, notifier.users[0])
}

func TestSend_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := chat.NewChatUseCase(e.store.Users(), e.store.Transactions(), e.store.Messages(), &mockBroadcaster{}, &recordingNotifier{})

	_, err := uc.Send(ctx, e.outsider.ID, e.deal.ID, "Привет")
	assert.ErrorIs(t, err, apperror.ErrNotParty)

	_, err = uc.Send(ctx, e.shipper.ID, uuid.New(), "Привет")
	assert.True(t, apperror.IsNotFound(err))

	_, err = uc.Send(ctx, e.shipper.ID, e.deal.ID, "   ")
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Send(ctx, e.shipper.ID, e.deal.ID, strings.Repeat("я", entity.MaxMessageLength+1))
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.List(ctx, e.outsider.ID, e.deal.ID)
	assert.ErrorIs(t, err, apperror.ErrNotParty)
}
