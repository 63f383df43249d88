package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type ReputationRecalculator interface {
	RecalculateMany(ctx context.Context, userIDs ...uuid.UUID) error
}

var statusLabels = map[valueobject.TransactionStatus]string{
	valueobject.TransactionStatusCreated:   "создана",
	valueobject.TransactionStatusConfirmed: "подтверждена",
	valueobject.TransactionStatusInTransit: "в пути",
	valueobject.TransactionStatusDelivered: "доставлена",
	valueobject.TransactionStatusCompleted: "завершена",
	valueobject.TransactionStatusDisputed:  "спор",
}

// AdvanceStatusUseCase переводит сделку по таблице переходов и выполняет
// побочные эффекты: создание е-ТТН при подтверждении, завершение груза и
// пересчёт RWS при завершении.
type AdvanceStatusUseCase struct {
	tx           repository.Transactor
	users        repository.UserRepository
	cargo        repository.CargoRepository
	transactions repository.TransactionRepository
	ettns        repository.ETTNRepository
	notifier     repository.Notifier
	reputation   ReputationRecalculator
	now          func() time.Time
}

func NewAdvanceStatusUseCase(
	tx repository.Transactor,
	users repository.UserRepository,
	cargo repository.CargoRepository,
	transactions repository.TransactionRepository,
	ettns repository.ETTNRepository,
	notifier repository.Notifier,
	reputation ReputationRecalculator,
) *AdvanceStatusUseCase {
	return &AdvanceStatusUseCase{
		tx:           tx,
		users:        users,
		cargo:        cargo,
		transactions: transactions,
		ettns:        ettns,
		notifier:     notifier,
		reputation:   reputation,
		now:          time.Now,
	}
}

func (uc *AdvanceStatusUseCase) Execute(ctx context.Context, actorID, transactionID uuid.UUID, status string) (*entity.Transaction, error) {
	target, err := valueobject.NewTransactionStatus(status)
	if err != nil {
		return nil, err
	}

	actor, err := uc.users.FindByID(ctx, actorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}

	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	role := deal.PartyOf(actor)
	if role == valueobject.PartyNone {
		return nil, apperror.ErrNotParty
	}

	var (
		from    valueobject.TransactionStatus
		created *entity.ETTN
	)
	now := uc.now()

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := uc.transactions.FindByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		from = locked.Status
		if err := locked.Advance(target, role, now); err != nil {
			return err
		}
		if err := uc.transactions.UpdateStatus(ctx, locked, from); err != nil {
			return err
		}

		switch target {
		case valueobject.TransactionStatusConfirmed:
			created, err = uc.ensureETTN(ctx, locked, now)
			if err != nil {
				return err
			}
		case valueobject.TransactionStatusCompleted:
			if err := uc.cargo.TransitionStatus(ctx, locked.CargoID, valueobject.CargoStatusInProgress, valueobject.CargoStatusCompleted); err != nil {
				return err
			}
		}

		deal = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionTransitionsTotal.WithLabelValues(string(from), string(target)).Inc()
	logger.Log.WithFields(logrus.Fields{
		"transaction_id": deal.ID,
		"from":           from,
		"to":             target,
		"actor_id":       actorID,
	}).Info("transaction: статус сделки изменён")

	uc.notifyStatus(ctx, deal, actorID, role)
	if created != nil {
		payload := repository.NotificationPayload{
			Type:    valueobject.NotificationStatusUpdate,
			Title:   "Создана е-ТТН",
			Message: fmt.Sprintf("Автоматически создана электронная товарно-транспортная накладная %s", created.Number),
			Link:    fmt.Sprintf("/transactions/%s", deal.ID),
		}
		for _, userID := range recipients(deal, actorID, role) {
			uc.notifier.Deliver(ctx, userID, payload)
		}
	}

	if target == valueobject.TransactionStatusCompleted {
		if err := uc.reputation.RecalculateMany(ctx, deal.ShipperID, deal.CarrierID); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"transaction_id": deal.ID,
				"error":          err,
			}).Warn("transaction: не удалось пересчитать RWS участников после завершения сделки")
		}
	}

	return deal, nil
}

// ensureETTN создаёт е-ТТН для сделки, если её ещё нет.
func (uc *AdvanceStatusUseCase) ensureETTN(ctx context.Context, deal *entity.Transaction, now time.Time) (*entity.ETTN, error) {
	exists, err := uc.ettns.ExistsForTransaction(ctx, deal.ID)
	if err != nil || exists {
		return nil, err
	}
	cargo, err := uc.cargo.FindByID(ctx, deal.CargoID)
	if err != nil {
		return nil, err
	}
	doc := entity.NewETTN(deal, cargo, now)
	if err := uc.ettns.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (uc *AdvanceStatusUseCase) notifyStatus(ctx context.Context, deal *entity.Transaction, actorID uuid.UUID, role valueobject.PartyRole) {
	payload := repository.NotificationPayload{
		Type:    valueobject.NotificationStatusUpdate,
		Title:   "Статус сделки обновлён",
		Message: fmt.Sprintf("Сделка переведена в статус «%s»", statusLabels[deal.Status]),
		Link:    fmt.Sprintf("/transactions/%s", deal.ID),
	}
	for _, userID := range recipients(deal, actorID, role) {
		uc.notifier.Deliver(ctx, userID, payload)
	}
}

// recipients - кому сообщать о действии: второй стороне сделки, а при действии
// администратора обеим сторонам.
func recipients(deal *entity.Transaction, actorID uuid.UUID, role valueobject.PartyRole) []uuid.UUID {
	if role == valueobject.PartyAdmin {
		return []uuid.UUID{deal.ShipperID, deal.CarrierID}
	}
	return []uuid.UUID{deal.Counterparty(actorID)}
}
