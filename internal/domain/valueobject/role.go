package valueobject

import "github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"

type UserRole string

const (
	RoleShipper UserRole = "shipper"
	RoleCarrier UserRole = "carrier"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleShipper, RoleCarrier, RoleAdmin:
		return true
	}
	return false
}

func NewUserRole(role string) (UserRole, error) {
	r := UserRole(role)
	if !r.IsValid() {
		return "", apperror.Validation("некорректная роль", map[string]string{
			"role": "допустимые значения: shipper, carrier, admin",
		})
	}
	return r, nil
}

// PartyRole - роль пользователя относительно конкретной сделки.
type PartyRole string

const (
	PartyShipper PartyRole = "shipper"
	PartyCarrier PartyRole = "carrier"
	PartyAdmin   PartyRole = "admin"
	// PartySystem - переходы, которые выполняет сам сервис (подписание е-ТТН).
	PartySystem PartyRole = "system"
	PartyNone   PartyRole = ""
)
