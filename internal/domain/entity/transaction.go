package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type Transaction struct {
	ID                uuid.UUID
	CargoID           uuid.UUID
	BidID             uuid.UUID
	ShipperID         uuid.UUID
	CarrierID         uuid.UUID
	Status            valueobject.TransactionStatus
	PickupConfirmed   bool
	DeliveryConfirmed bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

// NewTransactionFromBid создаёт сделку в момент принятия ставки.
func NewTransactionFromBid(cargo *Cargo, bid *Bid) *Transaction {
	now := time.Now()
	return &Transaction{
		ID:        uuid.New(),
		CargoID:   cargo.ID,
		BidID:     bid.ID,
		ShipperID: cargo.OwnerID,
		CarrierID: bid.CarrierID,
		Status:    valueobject.TransactionStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Transaction) IsParty(userID uuid.UUID) bool {
	return t.ShipperID == userID || t.CarrierID == userID
}

// PartyOf возвращает роль пользователя в сделке. Участие в сделке важнее
// глобальной роли администратора.
func (t *Transaction) PartyOf(user *User) valueobject.PartyRole {
	switch {
	case user == nil:
		return valueobject.PartyNone
	case t.ShipperID == user.ID:
		return valueobject.PartyShipper
	case t.CarrierID == user.ID:
		return valueobject.PartyCarrier
	case user.IsAdmin():
		return valueobject.PartyAdmin
	}
	return valueobject.PartyNone
}

// Counterparty возвращает второго участника сделки.
func (t *Transaction) Counterparty(userID uuid.UUID) uuid.UUID {
	if t.ShipperID == userID {
		return t.CarrierID
	}
	return t.ShipperID
}

// Advance переводит сделку в новый статус по таблице переходов.
func (t *Transaction) Advance(to valueobject.TransactionStatus, actor valueobject.PartyRole, now time.Time) error {
	if actor == valueobject.PartyNone {
		return apperror.ErrNotParty
	}
	if !t.Status.CanTransitionTo(to) {
		return apperror.Validation("недопустимый переход статуса сделки", map[string]string{
			"status": "переход из " + string(t.Status) + " в " + string(to) + " запрещён",
		})
	}
	if !t.Status.CanBePerformedBy(to, actor) {
		return apperror.New(apperror.ErrCodeForbidden, "этот переход выполняет другая сторона сделки")
	}

	t.Status = to
	t.UpdatedAt = now
	switch to {
	case valueobject.TransactionStatusInTransit:
		t.PickupConfirmed = true
	case valueobject.TransactionStatusDelivered:
		t.DeliveryConfirmed = true
	case valueobject.TransactionStatusCompleted:
		if t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
	}
	return nil
}
