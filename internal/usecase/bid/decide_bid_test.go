package bid_test

import (
	"context"
	"errors"
	"sync"
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
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/bid"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/reputation"
)

type sentNotification struct {
	userID  uuid.UUID
	payload repository.NotificationPayload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Deliver(_ context.Context, userID uuid.UUID, payload repository.NotificationPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID: userID, payload: payload})
}

type mockRecalculator struct {
	mock.Mock
}

func (m *mockRecalculator) Recalculate(ctx context.Context, userID uuid.UUID) (entity.Reputation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entity.Reputation), args.Error(1)
}

type failingTransactions struct {
	*memory.TransactionRepository
}

func (f failingTransactions) Create(context.Context, *entity.Transaction) error {
	return apperror.Wrap(errors.New("connection reset"), apperror.ErrCodeDatabaseError, "не удалось создать сделку")
}

type env struct {
	store    *memory.Store
	notifier *recordingNotifier
	shipper  *entity.User
	carrier  *entity.User
	admin    *entity.User
	cargo    *entity.Cargo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	e := &env{
		store:    store,
		notifier: &recordingNotifier{},
		shipper:  &entity.User{ID: uuid.New(), Email: "shipper@example.kz", Role: valueobject.RoleShipper},
		carrier:  &entity.User{ID: uuid.New(), Email: "carrier@example.kz", Role: valueobject.RoleCarrier},
		admin:    &entity.User{ID: uuid.New(), Email: "admin@example.kz", Role: valueobject.RoleAdmin},
	}
	for _, u := range []*entity.User{e.shipper, e.carrier, e.admin} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	cargo, err := entity.NewCargo(e.shipper.ID, entity.CargoParams{
		Title: "Цемент", Category: "construction", Origin: "Шымкент", Destination: "Караганда",
		Weight: 20, Price: 400000, PickupDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.Cargo().Create(ctx, cargo))
	e.cargo = cargo
	return e
}

func (e *env) placeBid(t *testing.T, carrierID uuid.UUID) *entity.Bid {
	t.Helper()
	b, err := entity.NewBid(e.cargo.ID, carrierID, 380000, "2 дня", "рефрижератор", nil)
	require.NoError(t, err)
	require.NoError(t, e.store.Bids().Create(context.Background(), b))
	return b
}

func (e *env) useCase(transactions repository.TransactionRepository, rec bid.ReputationRecalculator) *bid.DecideBidUseCase {
	return bid.NewDecideBidUseCase(e.store, e.store.Users(), e.store.Cargo(), e.store.Bids(), transactions, e.notifier, rec)
}

func (e *env) engine() *reputation.Engine {
	return reputation.NewEngine(e.store.Users(), e.store.Transactions(), e.store.Bids(), e.store.Ratings())
}

func TestDecideBid_Accept_CreatesTransactionAtomically(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.placeBid(t, e.carrier.ID)

	result, err := e.useCase(e.store.Transactions(), e.engine()).Execute(ctx, e.shipper.ID, b.ID, "accepted")

	require.NoError(t, err)
	assert.Equal(t, valueobject.BidStatusAccepted, result.Bid.Status)
	require.NotNil(t, result.Transaction)
	assert.Equal(t, b.ID, result.Transaction.BidID)
	assert.Equal(t, e.shipper.ID, result.Transaction.ShipperID)
	assert.Equal(t, e.carrier.ID, result.Transaction.CarrierID)
	assert.Equal(t, valueobject.TransactionStatusCreated, result.Transaction.Status)

	cargo, _ := e.store.Cargo().FindByID(ctx, e.cargo.ID)
	assert.Equal(t, valueobject.CargoStatusInProgress, cargo.Status)
	deals, _ := e.store.Transactions().FindByUserID(ctx, e.carrier.ID)
	assert.Len(t, deals, 1)

	require.Len(t, e.notifier.sent, 1)
	assert.Equal(t, e.carrier.ID, e.notifier.sent[0].userID)
	assert.Equal(t, valueobject.NotificationBidAccepted, e.notifier.sent[0].payload.Type)
	assert.Equal(t, "/transactions/"+result.Transaction.ID.String(), e.notifier.sent[0].payload.Link)

	carrier, _ := e.store.Users().FindByID(ctx, e.carrier.ID)
	assert.Equal(t, 1, carrier.Reputation.AcceptedBids)
	assert.Equal(t, 100.0, carrier.Reputation.AcceptanceRate)
}

func TestDecideBid_Accept_SecondBidRejectedByGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	other := &entity.User{ID: uuid.New(), Email: "other@example.kz", Role: valueobject.RoleCarrier}
	require.NoError(t, e.store.Users().Create(ctx, other))
	first := e.placeBid(t, e.carrier.ID)
	second := e.placeBid(t, other.ID)
	uc := e.useCase(e.store.Transactions(), e.engine())

	_, err := uc.Execute(ctx, e.shipper.ID, first.ID, "accepted")
	require.NoError(t, err)

	_, err = uc.Execute(ctx, e.shipper.ID, second.ID, "accepted")
	assert.True(t, apperror.IsConflict(err))

	stillPending, _ := e.store.Bids().FindByID(ctx, second.ID)
	assert.Equal(t, valueobject.BidStatusPending, stillPending.Status)
	deals, _ := e.store.Transactions().FindByUserID(ctx, e.shipper.ID)
	assert.Len(t, deals, 1)
}

func TestDecideBid_Accept_RollsBackOnFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.placeBid(t, e.carrier.ID)
	rec := &mockRecalculator{}

	_, err := e.useCase(failingTransactions{e.store.Transactions()}, rec).Execute(ctx, e.shipper.ID, b.ID, "accepted")

	require.Error(t, err)
	stored, _ := e.store.Bids().FindByID(ctx, b.ID)
	assert.Equal(t, valueobject.BidStatusPending, stored.Status)
	cargo, _ := e.store.Cargo().FindByID(ctx, e.cargo.ID)
	assert.Equal(t, valueobject.CargoStatusActive, cargo.Status)
	assert.Empty(t, e.notifier.sent)
	rec.AssertNotCalled(t, "Recalculate", mock.Anything, mock.Anything)
}

func TestDecideBid_Accept_ReputationFailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	b := e.placeBid(t, e.carrier.ID)
	rec := &mockRecalculator{}
	rec.On("Recalculate", mock.Anything, e.carrier.ID).Return(entity.Reputation{}, errors.New("timeout"))

	result, err := e.useCase(e.store.Transactions(), rec).Execute(context.Background(), e.shipper.ID, b.ID, "accepted")

	require.NoError(t, err)
	assert.NotNil(t, result.Transaction)
	rec.AssertExpectations(t)
}

func TestDecideBid_Reject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.placeBid(t, e.carrier.ID)
	rec := &mockRecalculator{}

	result, err := e.useCase(e.store.Transactions(), rec).Execute(ctx, e.shipper.ID, b.ID, "rejected")

	require.NoError(t, err)
	assert.Equal(t, valueobject.BidStatusRejected, result.Bid.Status)
	assert.Nil(t, result.Transaction)
	cargo, _ := e.store.Cargo().FindByID(ctx, e.cargo.ID)
	assert.Equal(t, valueobject.CargoStatusActive, cargo.Status)
	require.Len(t, e.notifier.sent, 1)
	assert.Equal(t, valueobject.NotificationBidRejected, e.notifier.sent[0].payload.Type)
	rec.AssertNotCalled(t, "Recalculate", mock.Anything, mock.Anything)

	_, err = e.useCase(e.store.Transactions(), rec).Execute(ctx, e.shipper.ID, b.ID, "accepted")
	assert.True(t, apperror.IsConflict(err))
}

func TestDecideBid_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.placeBid(t, e.carrier.ID)
	uc := e.useCase(e.store.Transactions(), &mockRecalculator{})

	_, err := uc.Execute(ctx, e.shipper.ID, b.ID, "pending")
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(ctx, e.shipper.ID, uuid.New(), "accepted")
	assert.True(t, apperror.IsNotFound(err))

	_, err = uc.Execute(ctx, e.carrier.ID, b.ID, "rejected")
	assert.True(t, apperror.IsForbidden(err))
}

func TestDecideBid_AdminMayDecide(t *testing.T) {
	e := newEnv(t)
	b := e.placeBid(t, e.carrier.ID)

	result, err := e.useCase(e.store.Transactions(), e.engine()).Execute(context.Background(), e.admin.ID, b.ID, "accepted")

	require.NoError(t, err)
	assert.Equal(t, e.shipper.ID, result.Transaction.ShipperID)
}
