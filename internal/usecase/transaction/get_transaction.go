package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type GetTransactionUseCase struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
}

func NewGetTransactionUseCase(users repository.UserRepository, transactions repository.TransactionRepository) *GetTransactionUseCase {
	return &GetTransactionUseCase{users: users, transactions: transactions}
}

// Execute возвращает сделку участнику или администратору.
func (uc *GetTransactionUseCase) Execute(ctx context.Context, actorID, transactionID uuid.UUID) (*entity.Transaction, error) {
	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if deal.IsParty(actorID) {
		return deal, nil
	}
	actor, err := uc.users.FindByID(ctx, actorID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if deal.PartyOf(actor) == valueobject.PartyNone {
		return nil, apperror.ErrNotParty
	}
	return deal, nil
}

func (uc *GetTransactionUseCase) List(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	return uc.transactions.FindByUserID(ctx, userID)
}
