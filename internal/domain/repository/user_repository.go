package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile сохраняет редактируемые поля профиля: имя, компанию, телефон, ИИН и БИН.
	UpdateProfile(ctx context.Context, user *entity.User) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role valueobject.UserRole, at time.Time) error
	// UpdateReputation перезаписывает все производные поля репутации разом.
	UpdateReputation(ctx context.Context, userID uuid.UUID, rep entity.Reputation, at time.Time) error
	// AssignCertificate сохраняет сертификат, только если у пользователя нет действующего.
	// Возвращает false, если сертификат уже был назначен другим запросом.
	AssignCertificate(ctx context.Context, userID uuid.UUID, certID string, expiry time.Time, now time.Time) (bool, error)
}
