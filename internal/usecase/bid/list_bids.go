package bid

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
)

type ListBidsUseCase struct {
	cargo repository.CargoRepository
	bids  repository.BidRepository
}

func NewListBidsUseCase(cargo repository.CargoRepository, bids repository.BidRepository) *ListBidsUseCase {
	return &ListBidsUseCase{cargo: cargo, bids: bids}
}

func (uc *ListBidsUseCase) ForCargo(ctx context.Context, cargoID uuid.UUID) ([]*entity.Bid, error) {
	if _, err := uc.cargo.FindByID(ctx, cargoID); err != nil {
		return nil, err
	}
	return uc.bids.FindByCargoID(ctx, cargoID)
}

func (uc *ListBidsUseCase) ForCarrier(ctx context.Context, carrierID uuid.UUID) ([]*entity.Bid, error) {
	return uc.bids.FindByCarrierID(ctx, carrierID)
}
