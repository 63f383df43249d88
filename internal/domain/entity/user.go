package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Reputation - производные поля репутации пользователя.
// Пересчитываются целиком движком RWS и никогда не правятся по частям.
type Reputation struct {
	RWSScore          int
	OTDRate           float64
	AcceptanceRate    float64
	ReliabilityScore  float64
	TotalTransactions int
	OnTimeDeliveries  int
	LateDeliveries    int
	TotalBids         int
	AcceptedBids      int
	IsRecommended     bool
}

type User struct {
	ID            uuid.UUID
	Email         string
	FirstName     string
	LastName      string
	CompanyName   *string
	Phone         *string
	Role          valueobject.UserRole
	IIN           *string
	BIN           *string
	EDSCertID     *string
	EDSCertExpiry *time.Time
	Reputation    Reputation
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == valueobject.RoleAdmin
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// DisplayName используется в текстах уведомлений.
func (u *User) DisplayName() string {
	if u.CompanyName != nil && *u.CompanyName != "" {
		return *u.CompanyName
	}
	return u.FullName()
}

// HasValidCertificate сообщает, есть ли у пользователя действующий сертификат ЭЦП.
func (u *User) HasValidCertificate(now time.Time) bool {
	return u.EDSCertID != nil && *u.EDSCertID != "" &&
		u.EDSCertExpiry != nil && u.EDSCertExpiry.After(now)
}

// ProfileUpdate - изменяемые поля профиля. nil оставляет поле как есть,
// пустая строка очищает необязательное поле.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	CompanyName *string
	Phone       *string
	IIN         *string
	BIN         *string
}

func (u *User) ApplyProfile(p ProfileUpdate, now time.Time) error {
	fields := map[string]string{}
	phone := clearable(p.Phone, u.Phone)
	if phone != nil && !phonePattern.MatchString(*phone) {
		fields["phone"] = "неверный формат телефона"
	}
	iin := clearable(p.IIN, u.IIN)
	if iin != nil && !IsTwelveDigits(*iin) {
		fields["iin"] = "ИИН должен содержать 12 цифр"
	}
	bin := clearable(p.BIN, u.BIN)
	if bin != nil && !IsTwelveDigits(*bin) {
		fields["bin"] = "БИН должен содержать 12 цифр"
	}
	if len(fields) > 0 {
		return apperror.Validation("некорректные данные профиля", fields)
	}

	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	u.CompanyName = clearable(p.CompanyName, u.CompanyName)
	u.Phone = phone
	u.IIN = iin
	u.BIN = bin
	u.UpdatedAt = now
	return nil
}

func clearable(next, current *string) *string {
	if next == nil {
		return current
	}
	v := strings.TrimSpace(*next)
	if v == "" {
		return nil
	}
	return &v
}

// IsTwelveDigits проверяет формат ИИН/БИН.
func IsTwelveDigits(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
