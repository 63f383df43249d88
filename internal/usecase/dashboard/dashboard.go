package dashboard

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

// ownerCargoLimit ограничивает выборку грузов владельца для сводки.
const ownerCargoLimit = 1000

type Summary struct {
	ActiveCargo         int
	InProgressCargo     int
	CompletedCargo      int
	TotalBids           int
	TotalTransactions   int
	ActiveTransactions  int
	UnreadNotifications int
	RWSScore            int
}

type DashboardUseCase struct {
	users         repository.UserRepository
	cargo         repository.CargoRepository
	bids          repository.BidRepository
	transactions  repository.TransactionRepository
	notifications repository.NotificationRepository
}

func NewDashboardUseCase(
	users repository.UserRepository,
	cargo repository.CargoRepository,
	bids repository.BidRepository,
	transactions repository.TransactionRepository,
	notifications repository.NotificationRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		users:         users,
		cargo:         cargo,
		bids:          bids,
		transactions:  transactions,
		notifications: notifications,
	}
}

// Execute собирает сводку личного кабинета. Для перевозчика TotalBids - его ставки,
// для грузоотправителя - ставки, полученные на его грузы.
func (uc *DashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		cargo  []*entity.Cargo
		deals  []*entity.Transaction
		unread int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cargo, err = uc.cargo.List(gctx, repository.CargoFilter{OwnerID: &userID, Limit: ownerCargoLimit})
		return err
	})
	g.Go(func() error {
		var err error
		deals, err = uc.transactions.FindByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = uc.notifications.CountUnread(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalTransactions:   len(deals),
		UnreadNotifications: unread,
		RWSScore:            user.Reputation.RWSScore,
	}
	for _, c := range cargo {
		switch c.Status {
		case valueobject.CargoStatusActive:
			summary.ActiveCargo++
		case valueobject.CargoStatusInProgress:
			summary.InProgressCargo++
		case valueobject.CargoStatusCompleted:
			summary.CompletedCargo++
		}
	}
	for _, d := range deals {
		if !d.Status.IsTerminal() {
			summary.ActiveTransactions++
		}
	}

	switch user.Role {
	case valueobject.RoleCarrier:
		stats, err := uc.bids.StatsByCarrier(ctx, userID)
		if err != nil {
			return nil, err
		}
		summary.TotalBids = stats.Total
	case valueobject.RoleShipper:
		for _, c := range cargo {
			bids, err := uc.bids.FindByCargoID(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			summary.TotalBids += len(bids)
		}
	}

	return summary, nil
}
