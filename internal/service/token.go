package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

const tokenIssuer = "cargolink"

// AccessToken - выпущенный access токен и момент его истечения.
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager отвечает за выпуск и проверку JWT.
type TokenManager struct {
	accessSecret []byte
	accessTTL    time.Duration
	now          func() time.Time
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(accessSecret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret: []byte(accessSecret),
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

// Issue выпускает access токен пользователя.
func (m *TokenManager) Issue(user *entity.User) (*AccessToken, error) {
	now := m.now()
	exp := now.Add(m.accessTTL)
	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("token: подпись access токена: %w", err)
	}
	return &AccessToken{Token: token, ExpiresAt: exp}, nil
}

// ParseAccess извлекает userID и роль из access токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, valueobject.UserRole, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный алгоритм подписи: %v", t.Header["alg"])
		}
		return m.accessSecret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return uuid.Nil, "", err
	}
	if !parsed.Valid {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errors.Join(jwt.ErrTokenInvalidClaims, err)
	}
	role, err := valueobject.NewUserRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", errors.Join(jwt.ErrTokenInvalidClaims, err)
	}
	return userID, role, nil
}
