package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.Rating) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Rating, error)
	ExistsForRater(ctx context.Context, raterID, transactionID uuid.UUID) (bool, error)
}
