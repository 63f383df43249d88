package ettn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type CreateETTNUseCase struct {
	transactions repository.TransactionRepository
	cargo        repository.CargoRepository
	ettns        repository.ETTNRepository
	notifier     repository.Notifier
	now          func() time.Time
}

func NewCreateETTNUseCase(
	transactions repository.TransactionRepository,
	cargo repository.CargoRepository,
	ettns repository.ETTNRepository,
	notifier repository.Notifier,
) *CreateETTNUseCase {
	return &CreateETTNUseCase{
		transactions: transactions,
		cargo:        cargo,
		ettns:        ettns,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (uc *CreateETTNUseCase) Execute(ctx context.Context, actorID, transactionID uuid.UUID) (*entity.ETTN, error) {
	if transactionID == uuid.Nil {
		return nil, apperror.Validation("не указана сделка", map[string]string{"transactionId": "обязательное поле"})
	}

	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !deal.IsParty(actorID) {
		return nil, apperror.ErrNotParty
	}

	exists, err := uc.ettns.ExistsForTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrETTNAlreadyExists
	}

	cargo, err := uc.cargo.FindByID(ctx, deal.CargoID)
	if err != nil {
		return nil, err
	}

	doc := entity.NewETTN(deal, cargo, uc.now())
	// уникальный индекс по transaction_id ловит гонку двух запросов
	if err := uc.ettns.Create(ctx, doc); err != nil {
		return nil, err
	}

	uc.notifier.Deliver(ctx, deal.Counterparty(actorID), repository.NotificationPayload{
		Type:    valueobject.NotificationStatusUpdate,
		Title:   "Создана е-ТТН",
		Message: fmt.Sprintf("Создана электронная товарно-транспортная накладная %s", doc.Number),
		Link:    fmt.Sprintf("/transactions/%s", deal.ID),
	})

	return doc, nil
}
