package reputation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type SubmitRatingInput struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Scores        entity.RatingScores
}

type SubmitRatingResult struct {
	Rating     *entity.Rating
	Reputation entity.Reputation
}

type SubmitRatingUseCase struct {
	transactions repository.TransactionRepository
	ratings      repository.RatingRepository
	engine       *Engine
}

func NewSubmitRatingUseCase(
	transactions repository.TransactionRepository,
	ratings repository.RatingRepository,
	engine *Engine,
) *SubmitRatingUseCase {
	return &SubmitRatingUseCase{
		transactions: transactions,
		ratings:      ratings,
		engine:       engine,
	}
}

// Execute сохраняет оценку контрагента по завершённой сделке и пересчитывает его RWS.
func (uc *SubmitRatingUseCase) Execute(ctx context.Context, raterID uuid.UUID, input SubmitRatingInput) (*SubmitRatingResult, error) {
	if err := input.Scores.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.transactions.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !tx.IsParty(raterID) {
		return nil, apperror.ErrNotParty
	}
	if tx.Counterparty(raterID) != input.UserID {
		return nil, apperror.Validation("оценить можно только контрагента по сделке", map[string]string{
			"userId": "должен быть второй стороной сделки",
		})
	}
	if tx.Status != valueobject.TransactionStatusCompleted {
		return nil, apperror.Validation("оценить можно только завершённую сделку", map[string]string{
			"transactionId": "сделка ещё не завершена",
		})
	}

	exists, err := uc.ratings.ExistsForRater(ctx, raterID, tx.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrRatingExists
	}

	rating, err := entity.NewRating(input.UserID, raterID, tx.ID, input.Scores)
	if err != nil {
		return nil, err
	}
	if err := uc.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	rep, err := uc.engine.Recalculate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	return &SubmitRatingResult{Rating: rating, Reputation: rep}, nil
}
