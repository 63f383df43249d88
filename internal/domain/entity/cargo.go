package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type Cargo struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Title          string
	Description    *string
	Category       string
	Origin         string
	Destination    string
	Weight         valueobject.Weight
	Price          valueobject.Money
	PickupDate     time.Time
	DeliveryDate   *time.Time
	AuctionEndDate *time.Time
	Status         valueobject.CargoStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CargoParams struct {
	Title          string
	Description    *string
	Category       string
	Origin         string
	Destination    string
	Weight         float64
	Price          float64
	PickupDate     time.Time
	DeliveryDate   *time.Time
	AuctionEndDate *time.Time
}

func NewCargo(ownerID uuid.UUID, p CargoParams) (*Cargo, error) {
	weight, price, err := validateCargo(p)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Cargo{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          strings.TrimSpace(p.Title),
		Description:    p.Description,
		Category:       p.Category,
		Origin:         p.Origin,
		Destination:    p.Destination,
		Weight:         weight,
		Price:          price,
		PickupDate:     p.PickupDate,
		DeliveryDate:   p.DeliveryDate,
		AuctionEndDate: p.AuctionEndDate,
		Status:         valueobject.CargoStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func validateCargo(p CargoParams) (valueobject.Weight, valueobject.Money, error) {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "обязательное поле"
	}
	if strings.TrimSpace(p.Category) == "" {
		fields["category"] = "обязательное поле"
	}
	if strings.TrimSpace(p.Origin) == "" {
		fields["origin"] = "обязательное поле"
	}
	if strings.TrimSpace(p.Destination) == "" {
		fields["destination"] = "обязательное поле"
	}
	if p.PickupDate.IsZero() {
		fields["pickupDate"] = "обязательное поле"
	}
	if p.DeliveryDate != nil && p.DeliveryDate.Before(p.PickupDate) {
		fields["deliveryDate"] = "не может быть раньше даты погрузки"
	}
	weight, err := valueobject.NewWeight(p.Weight)
	if err != nil {
		fields["weight"] = "должно быть неотрицательным числом"
	}
	price, err := valueobject.NewMoney(p.Price, valueobject.DefaultCurrency)
	if err != nil {
		fields["price"] = "должно быть неотрицательным числом"
	}
	if len(fields) > 0 {
		return 0, valueobject.Money{}, apperror.Validation("некорректные данные груза", fields)
	}
	return weight, price, nil
}

// CargoUpdate - изменяемые поля груза; nil оставляет поле как есть.
// Пустое описание очищает его.
type CargoUpdate struct {
	Title          *string
	Description    *string
	Category       *string
	Origin         *string
	Destination    *string
	Weight         *float64
	Price          *float64
	PickupDate     *time.Time
	DeliveryDate   *time.Time
	AuctionEndDate *time.Time
}

// Apply применяет изменения к активному грузу с той же проверкой, что и при создании.
func (c *Cargo) Apply(u CargoUpdate, now time.Time) error {
	if !c.IsActive() {
		return apperror.New(apperror.ErrCodeValidation, "изменить можно только активный груз")
	}

	p := CargoParams{
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Origin:         c.Origin,
		Destination:    c.Destination,
		Weight:         float64(c.Weight),
		Price:          c.Price.Amount,
		PickupDate:     c.PickupDate,
		DeliveryDate:   c.DeliveryDate,
		AuctionEndDate: c.AuctionEndDate,
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = u.Description
		if strings.TrimSpace(*u.Description) == "" {
			p.Description = nil
		}
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Origin != nil {
		p.Origin = *u.Origin
	}
	if u.Destination != nil {
		p.Destination = *u.Destination
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.PickupDate != nil {
		p.PickupDate = *u.PickupDate
	}
	if u.DeliveryDate != nil {
		p.DeliveryDate = u.DeliveryDate
	}
	if u.AuctionEndDate != nil {
		p.AuctionEndDate = u.AuctionEndDate
	}

	weight, price, err := validateCargo(p)
	if err != nil {
		return err
	}
	c.Title = strings.TrimSpace(p.Title)
	c.Description = p.Description
	c.Category = p.Category
	c.Origin = p.Origin
	c.Destination = p.Destination
	c.Weight = weight
	c.Price = price
	c.PickupDate = p.PickupDate
	c.DeliveryDate = p.DeliveryDate
	c.AuctionEndDate = p.AuctionEndDate
	c.UpdatedAt = now
	return nil
}

func (c *Cargo) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// CanBeManagedBy - владелец груза или администратор.
func (c *Cargo) CanBeManagedBy(user *User) bool {
	return user != nil && (c.IsOwnedBy(user.ID) || user.IsAdmin())
}

func (c *Cargo) IsActive() bool {
	return c.Status == valueobject.CargoStatusActive
}

// DocumentDescription - описание груза для е-ТТН: описание или заголовок.
func (c *Cargo) DocumentDescription() string {
	if c.Description != nil && strings.TrimSpace(*c.Description) != "" {
		return *c.Description
	}
	return c.Title
}

func (c *Cargo) TransitionTo(status valueobject.CargoStatus) error {
	if !c.Status.CanTransitionTo(status) {
		return apperror.New(apperror.ErrCodeValidation, "недопустимая смена статуса груза")
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Cargo) Cancel() error {
	if !c.IsActive() {
		return apperror.New(apperror.ErrCodeValidation, "отменить можно только активный груз")
	}
	return c.TransitionTo(valueobject.CargoStatusCancelled)
}
