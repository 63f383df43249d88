package reputation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
)

type Profile struct {
	User    *entity.User
	Ratings []*entity.Rating
}

type GetReputationUseCase struct {
	users   repository.UserRepository
	ratings repository.RatingRepository
}

func NewGetReputationUseCase(users repository.UserRepository, ratings repository.RatingRepository) *GetReputationUseCase {
	return &GetReputationUseCase{users: users, ratings: ratings}
}

// Execute возвращает сохранённую проекцию репутации и полученные оценки.
func (uc *GetReputationUseCase) Execute(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratings, err := uc.ratings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Ratings: ratings}, nil
}
