package bid

import (
	"context"
	"fmt"

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
	Recalculate(ctx context.Context, userID uuid.UUID) (entity.Reputation, error)
}

type DecideBidResult struct {
	Bid         *entity.Bid
	Transaction *entity.Transaction
}

// DecideBidUseCase принимает или отклоняет ставку владельцем груза.
type DecideBidUseCase struct {
	tx           repository.Transactor
	users        repository.UserRepository
	cargo        repository.CargoRepository
	bids         repository.BidRepository
	transactions repository.TransactionRepository
	notifier     repository.Notifier
	reputation   ReputationRecalculator
}

func NewDecideBidUseCase(
	tx repository.Transactor,
	users repository.UserRepository,
	cargo repository.CargoRepository,
	bids repository.BidRepository,
	transactions repository.TransactionRepository,
	notifier repository.Notifier,
	reputation ReputationRecalculator,
) *DecideBidUseCase {
	return &DecideBidUseCase{
		tx:           tx,
		users:        users,
		cargo:        cargo,
		bids:         bids,
		transactions: transactions,
		notifier:     notifier,
		reputation:   reputation,
	}
}

func (uc *DecideBidUseCase) Execute(ctx context.Context, actorID, bidID uuid.UUID, status string) (*DecideBidResult, error) {
	decision, err := valueobject.NewBidDecision(status)
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

	bid, err := uc.bids.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	cargo, err := uc.cargo.FindByID(ctx, bid.CargoID)
	if err != nil {
		return nil, err
	}
	if !cargo.CanBeManagedBy(actor) {
		return nil, apperror.ErrNotCargoOwner
	}
	if !bid.IsPending() {
		return nil, apperror.ErrBidNotPending
	}

	if decision == valueobject.BidStatusAccepted {
		return uc.accept(ctx, bid, cargo)
	}
	return uc.reject(ctx, bid, cargo)
}

// accept выполняет принятие ставки, создание сделки и смену статуса груза
// в одной транзакции БД. Уведомление и пересчёт RWS выполняются после фиксации.
func (uc *DecideBidUseCase) accept(ctx context.Context, bid *entity.Bid, cargo *entity.Cargo) (*DecideBidResult, error) {
	var deal *entity.Transaction

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := uc.cargo.FindByIDForUpdate(ctx, cargo.ID)
		if err != nil {
			return err
		}
		if !locked.IsActive() {
			return apperror.ErrCargoNotActive
		}
		hasAccepted, err := uc.bids.HasAccepted(ctx, locked.ID)
		if err != nil {
			return err
		}
		if hasAccepted {
			return apperror.ErrBidAlreadyAccepted
		}

		if err := uc.bids.TransitionStatus(ctx, bid.ID, valueobject.BidStatusPending, valueobject.BidStatusAccepted); err != nil {
			return err
		}
		if err := bid.Accept(); err != nil {
			return err
		}

		deal = entity.NewTransactionFromBid(locked, bid)
		if err := uc.transactions.Create(ctx, deal); err != nil {
			return err
		}

		if err := uc.cargo.TransitionStatus(ctx, locked.ID, valueobject.CargoStatusActive, valueobject.CargoStatusInProgress); err != nil {
			return err
		}
		cargo.Status = valueobject.CargoStatusInProgress
		return nil
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("accept_bid").Inc()
		return nil, err
	}
	metrics.BidDecisionsTotal.WithLabelValues(string(valueobject.BidStatusAccepted)).Inc()

	uc.notifier.Deliver(ctx, bid.CarrierID, repository.NotificationPayload{
		Type:    valueobject.NotificationBidAccepted,
		Title:   "Ваша ставка принята!",
		Message: fmt.Sprintf("Ваша ставка на груз \"%s\" была принята", cargo.Title),
		Link:    fmt.Sprintf("/transactions/%s", deal.ID),
	})

	if _, err := uc.reputation.Recalculate(ctx, bid.CarrierID); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"bid_id":     bid.ID,
			"carrier_id": bid.CarrierID,
			"error":      err,
		}).Warn("bid: не удалось пересчитать RWS перевозчика после принятия ставки")
	}

	return &DecideBidResult{Bid: bid, Transaction: deal}, nil
}

func (uc *DecideBidUseCase) reject(ctx context.Context, bid *entity.Bid, cargo *entity.Cargo) (*DecideBidResult, error) {
	if err := uc.bids.TransitionStatus(ctx, bid.ID, valueobject.BidStatusPending, valueobject.BidStatusRejected); err != nil {
		return nil, err
	}
	if err := bid.Reject(); err != nil {
		return nil, err
	}
	metrics.BidDecisionsTotal.WithLabelValues(string(valueobject.BidStatusRejected)).Inc()

	uc.notifier.Deliver(ctx, bid.CarrierID, repository.NotificationPayload{
		Type:    valueobject.NotificationBidRejected,
		Title:   "Ваша ставка отклонена",
		Message: fmt.Sprintf("Ваша ставка на груз \"%s\" была отклонена", cargo.Title),
		Link:    fmt.Sprintf("/cargo/%s", cargo.ID),
	})

	return &DecideBidResult{Bid: bid}, nil
}
