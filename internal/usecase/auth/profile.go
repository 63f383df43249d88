package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

// ProfileUseCase - профиль текущего пользователя и смена ролей.
// Роль в токене не используется для проверок доступа: сценарии читают её из хранилища,
// поэтому смена роли действует сразу, без перевыпуска токена.
type ProfileUseCase struct {
	users repository.UserRepository
}

func NewProfileUseCase(users repository.UserRepository) *ProfileUseCase {
	return &ProfileUseCase{users: users}
}

func (uc *ProfileUseCase) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return uc.users.FindByID(ctx, userID)
}

// UpdateProfile меняет имя, компанию, телефон, ИИН и БИН. ИИН/БИН попадают
// в сертификат ЭЦП, выпускаемый при первом подписании е-ТТН.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID uuid.UUID, update entity.ProfileUpdate) (*entity.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ApplyProfile(update, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeOwnRole переключает пользователя между грузоотправителем и перевозчиком.
func (uc *ProfileUseCase) ChangeOwnRole(ctx context.Context, userID uuid.UUID, role string) (*entity.User, error) {
	next := valueobject.UserRole(role)
	if next != valueobject.RoleShipper && next != valueobject.RoleCarrier {
		return nil, apperror.Validation("некорректная роль", map[string]string{
			"role": "допустимые значения: shipper, carrier",
		})
	}
	return uc.setRole(ctx, userID, userID, next)
}

// SetRole назначает роль любому пользователю. Доступно только администратору.
func (uc *ProfileUseCase) SetRole(ctx context.Context, actorID, targetID uuid.UUID, role string) (*entity.User, error) {
	actor, err := uc.users.FindByID(ctx, actorID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrForbidden
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "менять роли может только администратор")
	}
	next, err := valueobject.NewUserRole(role)
	if err != nil {
		return nil, err
	}
	return uc.setRole(ctx, actorID, targetID, next)
}

func (uc *ProfileUseCase) setRole(ctx context.Context, actorID, targetID uuid.UUID, role valueobject.UserRole) (*entity.User, error) {
	now := time.Now()
	if err := uc.users.UpdateRole(ctx, targetID, role, now); err != nil {
		return nil, err
	}
	user, err := uc.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  targetID,
		"actor_id": actorID,
		"role":     role,
	}).Info("auth: роль пользователя изменена")
	return user, nil
}
