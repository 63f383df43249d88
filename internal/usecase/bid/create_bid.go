package bid

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type CreateBidInput struct {
	CargoID      uuid.UUID
	Amount       float64
	DeliveryTime string
	VehicleType  string
	Message      *string
}

type CreateBidUseCase struct {
	users    repository.UserRepository
	cargo    repository.CargoRepository
	bids     repository.BidRepository
	notifier repository.Notifier
}

func NewCreateBidUseCase(
	users repository.UserRepository,
	cargo repository.CargoRepository,
	bids repository.BidRepository,
	notifier repository.Notifier,
) *CreateBidUseCase {
	return &CreateBidUseCase{users: users, cargo: cargo, bids: bids, notifier: notifier}
}

func (uc *CreateBidUseCase) Execute(ctx context.Context, carrierID uuid.UUID, input CreateBidInput) (*entity.Bid, error) {
	carrier, err := uc.users.FindByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	if carrier.Role != valueobject.RoleCarrier && !carrier.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "ставки могут делать только перевозчики")
	}

	cargo, err := uc.cargo.FindByID(ctx, input.CargoID)
	if err != nil {
		return nil, err
	}
	if !cargo.IsActive() {
		return nil, apperror.ErrCargoNotActive
	}
	if cargo.IsOwnedBy(carrierID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя делать ставку на собственный груз")
	}

	bid, err := entity.NewBid(cargo.ID, carrierID, input.Amount, input.DeliveryTime, input.VehicleType, input.Message)
	if err != nil {
		return nil, err
	}
	if err := uc.bids.Create(ctx, bid); err != nil {
		return nil, err
	}
	metrics.BidsPlacedTotal.Inc()

	uc.notifier.Deliver(ctx, cargo.OwnerID, repository.NotificationPayload{
		Type:    valueobject.NotificationNewBid,
		Title:   "Новая ставка на ваш груз",
		Message: fmt.Sprintf("Перевозчик %s разместил ставку в размере %.2f₸", carrier.DisplayName(), bid.Amount.Amount),
		Link:    fmt.Sprintf("/cargo/%s", cargo.ID),
	})

	return bid, nil
}
