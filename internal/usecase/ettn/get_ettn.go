package ettn

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type GetETTNUseCase struct {
	transactions repository.TransactionRepository
	ettns        repository.ETTNRepository
	signatures   repository.SignatureRepository
	now          func() time.Time
}

func NewGetETTNUseCase(
	transactions repository.TransactionRepository,
	ettns repository.ETTNRepository,
	signatures repository.SignatureRepository,
) *GetETTNUseCase {
	return &GetETTNUseCase{
		transactions: transactions,
		ettns:        ettns,
		signatures:   signatures,
		now:          time.Now,
	}
}

func (uc *GetETTNUseCase) ByID(ctx context.Context, actorID, ettnID uuid.UUID) (*entity.ETTN, error) {
	doc, err := uc.ettns.FindByID(ctx, ettnID)
	if err != nil {
		return nil, err
	}
	if !doc.IsParty(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нет доступа к этой е-ТТН")
	}
	return doc, nil
}

func (uc *GetETTNUseCase) ByTransaction(ctx context.Context, actorID, transactionID uuid.UUID) (*entity.ETTN, error) {
	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !deal.IsParty(actorID) {
		return nil, apperror.ErrNotParty
	}
	doc, err := uc.ettns.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "е-ТТН для этой сделки не найдена")
		}
		return nil, err
	}
	return doc, nil
}

// Signatures возвращает журнал подписей. Подписи с истёкшим сертификатом
// помечаются недействительными.
func (uc *GetETTNUseCase) Signatures(ctx context.Context, actorID, ettnID uuid.UUID) ([]*entity.DigitalSignature, error) {
	if _, err := uc.ByID(ctx, actorID, ettnID); err != nil {
		return nil, err
	}
	records, err := uc.signatures.FindByETTNID(ctx, ettnID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var expired []uuid.UUID
	for _, r := range records {
		if r.IsValid && r.IsCertificateExpired(now) {
			expired = append(expired, r.ID)
			r.IsValid = false
		}
	}
	if len(expired) > 0 {
		if err := uc.signatures.MarkInvalid(ctx, expired); err != nil {
			return nil, err
		}
		logger.Log.WithFields(logrus.Fields{
			"ettn_id": ettnID,
			"count":   len(expired),
		}).Info("ettn: подписи с истёкшим сертификатом помечены недействительными")
	}
	return records, nil
}
