package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type CargoRepository interface {
	Create(ctx context.Context, cargo *entity.Cargo) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Cargo, error)
	// FindByIDForUpdate блокирует строку груза до конца транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cargo, error)
	List(ctx context.Context, filter CargoFilter) ([]*entity.Cargo, error)
	// Update сохраняет изменённые поля, только пока груз активен.
	Update(ctx context.Context, cargo *entity.Cargo) error
	// TransitionStatus меняет статус, только если текущий равен from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.CargoStatus) error
}

type CargoFilter struct {
	Status  string
	OwnerID *uuid.UUID
	Limit   int
	Offset  int
}
