package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type ETTNRepository interface {
	Create(ctx context.Context, ettn *entity.ETTN) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ETTN, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*entity.ETTN, error)
	ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error)
	// SaveSignature записывает слот подписи стороны и статус документа,
	// только если слот ещё пуст. Иначе возвращает ErrAlreadySigned.
	SaveSignature(ctx context.Context, ettn *entity.ETTN, role valueobject.PartyRole) error
}

type SignatureRepository interface {
	Create(ctx context.Context, signature *entity.DigitalSignature) error
	FindByETTNID(ctx context.Context, ettnID uuid.UUID) ([]*entity.DigitalSignature, error)
	MarkInvalid(ctx context.Context, ids []uuid.UUID) error
}
