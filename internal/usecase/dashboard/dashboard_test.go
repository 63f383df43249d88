package dashboard_test

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
	"github.com/ignatzorin/cargolink-backend/internal/usecase/dashboard"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	shipper := &entity.User{ID: uuid.New(), Email: "s@example.kz", Role: valueobject.RoleShipper}
	carrier := &entity.User{ID: uuid.New(), Email: "c@example.kz", Role: valueobject.RoleCarrier}
	carrier.Reputation.RWSScore = 77
	require.NoError(t, store.Users().Create(ctx, shipper))
	require.NoError(t, store.Users().Create(ctx, carrier))

	statuses := []valueobject.CargoStatus{
		valueobject.CargoStatusActive,
		valueobject.CargoStatusActive,
		valueobject.CargoStatusInProgress,
		valueobject.CargoStatusCancelled,
	}
	var inProgress *entity.Cargo
	for _, status := range statuses {
		c, err := entity.NewCargo(shipper.ID, entity.CargoParams{
			Title: "Кирпич", Category: "construction", Origin: "Караганда", Destination: "Астана",
			Weight: 10, Price: 300000, PickupDate: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)
		c.Status = status
		require.NoError(t, store.Cargo().Create(ctx, c))
		if status == valueobject.CargoStatusInProgress {
			inProgress = c
		}

		b, err := entity.NewBid(c.ID, carrier.ID, 280000, "2 дня", "тент", nil)
		require.NoError(t, err)
		require.NoError(t, store.Bids().Create(ctx, b))
		if status == valueobject.CargoStatusInProgress {
			b.Status = valueobject.BidStatusAccepted
			deal := entity.NewTransactionFromBid(c, b)
			require.NoError(t, store.Transactions().Create(ctx, deal))
		}
	}
	require.NotNil(t, inProgress)
	require.NoError(t, store.Notifications().Create(ctx, &entity.Notification{UserID: carrier.ID, Title: "Ваша ставка принята!"}))

	uc := dashboard.NewDashboardUseCase(store.Users(), store.Cargo(), store.Bids(), store.Transactions(), store.Notifications())

	forShipper, err := uc.Execute(ctx, shipper.ID)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Summary{
		ActiveCargo:        2,
		InProgressCargo:    1,
		TotalBids:          4,
		TotalTransactions:  1,
		ActiveTransactions: 1,
	}, *forShipper)

	forCarrier, err := uc.Execute(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Summary{
		TotalBids:           4,
		TotalTransactions:   1,
		ActiveTransactions:  1,
		UnreadNotifications: 1,
		RWSScore:            77,
	}, *forCarrier)

	_, err = uc.Execute(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
