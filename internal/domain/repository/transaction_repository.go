package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error)
	// UpdateStatus сохраняет статус и флаги сделки, только если текущий статус равен from.
	UpdateStatus(ctx context.Context, tx *entity.Transaction, from valueobject.TransactionStatus) error
	// FindCompletedDeliveries возвращает завершённые сделки пользователя
	// вместе с заявленной датой доставки груза.
	FindCompletedDeliveries(ctx context.Context, userID uuid.UUID) ([]CompletedDelivery, error)
}

type CompletedDelivery struct {
	TransactionID uuid.UUID
	CompletedAt   *time.Time
	DeliveryDate  *time.Time
}
