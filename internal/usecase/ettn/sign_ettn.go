package ettn

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

type CertificateProvider interface {
	Execute(ctx context.Context, userID uuid.UUID) (*entity.Certificate, error)
}

// SignETTNUseCase подписывает е-ТТН от имени одной из сторон сделки.
type SignETTNUseCase struct {
	tx           repository.Transactor
	ettns        repository.ETTNRepository
	signatures   repository.SignatureRepository
	transactions repository.TransactionRepository
	certificates CertificateProvider
	signer       repository.DigitalSigner
	notifier     repository.Notifier
	now          func() time.Time
}

func NewSignETTNUseCase(
	tx repository.Transactor,
	ettns repository.ETTNRepository,
	signatures repository.SignatureRepository,
	transactions repository.TransactionRepository,
	certificates CertificateProvider,
	signer repository.DigitalSigner,
	notifier repository.Notifier,
) *SignETTNUseCase {
	return &SignETTNUseCase{
		tx:           tx,
		ettns:        ettns,
		signatures:   signatures,
		transactions: transactions,
		certificates: certificates,
		signer:       signer,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (uc *SignETTNUseCase) Execute(ctx context.Context, actorID, ettnID uuid.UUID) (*entity.ETTN, error) {
	doc, err := uc.ettns.FindByID(ctx, ettnID)
	if err != nil {
		return nil, err
	}
	role := doc.PartyOf(actorID)
	if role == valueobject.PartyNone {
		return nil, apperror.ErrNotParty
	}
	if doc.IsSignedBy(role) {
		return nil, apperror.ErrAlreadySigned
	}

	cert, err := uc.certificates.Execute(ctx, actorID)
	if err != nil {
		return nil, err
	}

	payload, err := doc.DocumentPayload()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать документ для подписи")
	}
	// подпись выполняется вне транзакции БД: сервис ЭЦП отвечает с задержкой
	result, err := uc.signer.Sign(ctx, payload, cert.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подписать е-ТТН")
	}

	var movedToTransit bool
	now := uc.now()

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		fresh, err := uc.ettns.FindByID(ctx, ettnID)
		if err != nil {
			return err
		}
		if err := fresh.ApplySignature(role, result.Signature, now); err != nil {
			return err
		}
		if err := uc.ettns.SaveSignature(ctx, fresh, role); err != nil {
			return err
		}
		record := entity.NewDigitalSignature(fresh.ID, actorID, role, result.Signature, cert, now)
		if err := uc.signatures.Create(ctx, record); err != nil {
			return err
		}

		if fresh.IsFullySigned() {
			movedToTransit, err = uc.startTransit(ctx, fresh.TransactionID, now)
			if err != nil {
				return err
			}
		}
		doc = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ETTNSignaturesTotal.WithLabelValues(string(role), string(doc.Status)).Inc()
	logger.Log.WithFields(logrus.Fields{
		"ettn_id":          doc.ID,
		"role":             role,
		"status":           doc.Status,
		"moved_to_transit": movedToTransit,
	}).Info("ettn: документ подписан")

	if doc.IsFullySigned() {
		uc.notifier.Deliver(ctx, doc.Counterparty(actorID), repository.NotificationPayload{
			Type:    valueobject.NotificationStatusUpdate,
			Title:   "е-ТТН полностью подписана",
			Message: fmt.Sprintf("Электронная товарно-транспортная накладная %s подписана обеими сторонами", doc.Number),
			Link:    fmt.Sprintf("/transactions/%s", doc.TransactionID),
		})
	}

	return doc, nil
}

// startTransit переводит подтверждённую сделку в статус in_transit.
// Сделки в других статусах не трогаются.
func (uc *SignETTNUseCase) startTransit(ctx context.Context, transactionID uuid.UUID, now time.Time) (bool, error) {
	deal, err := uc.transactions.FindByIDForUpdate(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if deal.Status != valueobject.TransactionStatusConfirmed {
		logger.Log.WithFields(logrus.Fields{
			"transaction_id": transactionID,
			"status":         deal.Status,
		}).Info("ettn: сделка не в статусе confirmed, перевод в in_transit пропущен")
		return false, nil
	}

	from := deal.Status
	if err := deal.Advance(valueobject.TransactionStatusInTransit, valueobject.PartySystem, now); err != nil {
		return false, err
	}
	if err := uc.transactions.UpdateStatus(ctx, deal, from); err != nil {
		return false, err
	}
	metrics.TransactionTransitionsTotal.WithLabelValues(string(from), string(deal.Status)).Inc()
	return true, nil
}
