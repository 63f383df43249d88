package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type Bid struct {
	ID           uuid.UUID
	CargoID      uuid.UUID
	CarrierID    uuid.UUID
	Amount       valueobject.Money
	DeliveryTime string
	VehicleType  string
	Message      *string
	Status       valueobject.BidStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBid(cargoID, carrierID uuid.UUID, amount float64, deliveryTime, vehicleType string, message *string) (*Bid, error) {
	fields := map[string]string{}
	money, err := valueobject.NewMoney(amount, valueobject.DefaultCurrency)
	if err != nil {
		fields["bidAmount"] = "должно быть неотрицательным числом"
	}
	if strings.TrimSpace(deliveryTime) == "" {
		fields["deliveryTime"] = "обязательное поле"
	}
	if strings.TrimSpace(vehicleType) == "" {
		fields["vehicleType"] = "обязательное поле"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("некорректные данные ставки", fields)
	}

	now := time.Now()
	return &Bid{
		ID:           uuid.New(),
		CargoID:      cargoID,
		CarrierID:    carrierID,
		Amount:       money,
		DeliveryTime: deliveryTime,
		VehicleType:  vehicleType,
		Message:      message,
		Status:       valueobject.BidStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (b *Bid) Accept() error {
	if !b.IsPending() {
		return apperror.ErrBidNotPending
	}
	b.Status = valueobject.BidStatusAccepted
	b.UpdatedAt = time.Now()
	return nil
}

func (b *Bid) Reject() error {
	if !b.IsPending() {
		return apperror.ErrBidNotPending
	}
	b.Status = valueobject.BidStatusRejected
	b.UpdatedAt = time.Now()
	return nil
}

func (b *Bid) IsPending() bool {
	return b.Status == valueobject.BidStatusPending
}

func (b *Bid) IsOwnedBy(userID uuid.UUID) bool {
	return b.CarrierID == userID
}
