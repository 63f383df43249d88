package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cargolink-backend/internal/service"
)

type DevLoginInput struct {
	Email       string
	Role        string
	FirstName   string
	LastName    string
	CompanyName *string
	IIN         *string
	BIN         *string
}

type DevLoginResult struct {
	User    *entity.User
	Token   *service.AccessToken
	Created bool
}

type TokenIssuer interface {
	Issue(user *entity.User) (*service.AccessToken, error)
}

// DevLoginUseCase выдаёт токен по email без пароля. Подключается только
// в окружении development, вместо внешнего провайдера аутентификации.
type DevLoginUseCase struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewDevLoginUseCase(users repository.UserRepository, tokens TokenIssuer) *DevLoginUseCase {
	return &DevLoginUseCase{users: users, tokens: tokens}
}

func (uc *DevLoginUseCase) Execute(ctx context.Context, input DevLoginInput) (*DevLoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("некорректный email", map[string]string{"email": "некорректный формат"})
	}

	user, err := uc.users.FindByEmail(ctx, email)
	created := false
	switch {
	case err == nil:
	case apperror.IsNotFound(err):
		user, err = uc.register(ctx, email, input)
		if err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"created": created,
	}).Info("auth: вход в режиме разработки")

	return &DevLoginResult{User: user, Token: token, Created: created}, nil
}

func (uc *DevLoginUseCase) register(ctx context.Context, email string, input DevLoginInput) (*entity.User, error) {
	role, err := valueobject.NewUserRole(input.Role)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if input.IIN != nil && !entity.IsTwelveDigits(*input.IIN) {
		fields["iin"] = "должен состоять из 12 цифр"
	}
	if input.BIN != nil && !entity.IsTwelveDigits(*input.BIN) {
		fields["bin"] = "должен состоять из 12 цифр"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("некорректные данные пользователя", fields)
	}

	now := time.Now()
	user := &entity.User{
		ID:          uuid.New(),
		Email:       email,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		CompanyName: input.CompanyName,
		Role:        role,
		IIN:         input.IIN,
		BIN:         input.BIN,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
