package cargo

import (
	"context"
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

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListInput struct {
	Status  string
	OwnerID *uuid.UUID
	Limit   int
	Offset  int
}

type CargoUseCase struct {
	users repository.UserRepository
	cargo repository.CargoRepository
}

func NewCargoUseCase(users repository.UserRepository, cargo repository.CargoRepository) *CargoUseCase {
	return &CargoUseCase{users: users, cargo: cargo}
}

// Create публикует груз. Размещать грузы могут грузоотправители и администраторы.
func (uc *CargoUseCase) Create(ctx context.Context, ownerID uuid.UUID, params entity.CargoParams) (*entity.Cargo, error) {
	owner, err := uc.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != valueobject.RoleShipper && !owner.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "размещать грузы могут только грузоотправители")
	}

	cargo, err := entity.NewCargo(ownerID, params)
	if err != nil {
		return nil, err
	}
	if err := uc.cargo.Create(ctx, cargo); err != nil {
		return nil, err
	}
	metrics.CargoCreatedTotal.Inc()
	return cargo, nil
}

func (uc *CargoUseCase) Get(ctx context.Context, id uuid.UUID) (*entity.Cargo, error) {
	return uc.cargo.FindByID(ctx, id)
}

func (uc *CargoUseCase) List(ctx context.Context, input ListInput) ([]*entity.Cargo, error) {
	if input.Status != "" {
		if _, err := valueobject.NewCargoStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}
	if input.Offset < 0 {
		input.Offset = 0
	}
	return uc.cargo.List(ctx, repository.CargoFilter{
		Status:  input.Status,
		OwnerID: input.OwnerID,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
}

// Update правит активный груз. Менять груз может владелец или администратор.
func (uc *CargoUseCase) Update(ctx context.Context, actorID, id uuid.UUID, update entity.CargoUpdate) (*entity.Cargo, error) {
	actor, err := uc.users.FindByID(ctx, actorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}
	cargo, err := uc.cargo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cargo.CanBeManagedBy(actor) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "изменить груз может только его владелец")
	}

	if err := cargo.Apply(update, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.cargo.Update(ctx, cargo); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"cargo_id": cargo.ID,
		"actor_id": actorID,
	}).Info("cargo: груз изменён")
	return cargo, nil
}

// Cancel снимает активный груз с публикации.
func (uc *CargoUseCase) Cancel(ctx context.Context, actorID, id uuid.UUID) (*entity.Cargo, error) {
	actor, err := uc.users.FindByID(ctx, actorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}
	cargo, err := uc.cargo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cargo.CanBeManagedBy(actor) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отменить груз может только его владелец")
	}

	from := cargo.Status
	if err := cargo.Cancel(); err != nil {
		return nil, err
	}
	if err := uc.cargo.TransitionStatus(ctx, cargo.ID, from, cargo.Status); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"cargo_id": cargo.ID,
		"actor_id": actorID,
	}).Info("cargo: груз отменён")
	return cargo, nil
}
