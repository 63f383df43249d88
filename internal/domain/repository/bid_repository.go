package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	FindByCargoID(ctx context.Context, cargoID uuid.UUID) ([]*entity.Bid, error)
	FindByCarrierID(ctx context.Context, carrierID uuid.UUID) ([]*entity.Bid, error)
	HasAccepted(ctx context.Context, cargoID uuid.UUID) (bool, error)
	// TransitionStatus меняет статус, только если текущий равен from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error
	StatsByCarrier(ctx context.Context, carrierID uuid.UUID) (BidStats, error)
}

type BidStats struct {
	Total    int
	Accepted int
}
