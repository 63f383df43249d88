package entity

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const ettnNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ETTN - электронная товарно-транспортная накладная, одна на сделку.
type ETTN struct {
	ID               uuid.UUID
	TransactionID    uuid.UUID
	Number           string
	CargoDescription string
	Origin           string
	Destination      string
	Weight           valueobject.Weight
	ShipperID        uuid.UUID
	CarrierID        uuid.UUID
	ShipperSignature *string
	ShipperSignedAt  *time.Time
	CarrierSignature *string
	CarrierSignedAt  *time.Time
	Status           valueobject.ETTNStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewETTN копирует данные груза и участников сделки в новый документ.
func NewETTN(tx *Transaction, cargo *Cargo, now time.Time) *ETTN {
	return &ETTN{
		ID:               uuid.New(),
		TransactionID:    tx.ID,
		Number:           GenerateETTNNumber(now),
		CargoDescription: cargo.DocumentDescription(),
		Origin:           cargo.Origin,
		Destination:      cargo.Destination,
		Weight:           cargo.Weight,
		ShipperID:        tx.ShipperID,
		CarrierID:        tx.CarrierID,
		Status:           valueobject.ETTNStatusPendingSignature,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// GenerateETTNNumber формирует номер вида ETTN-<unix ms>-<9 символов base36>.
func GenerateETTNNumber(now time.Time) string {
	suffix := make([]byte, 9)
	base := big.NewInt(int64(len(ettnNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			n = big.NewInt(now.UnixNano() % int64(len(ettnNumberAlphabet)))
		}
		suffix[i] = ettnNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ETTN-%d-%s", now.UnixMilli(), suffix)
}

func (e *ETTN) PartyOf(userID uuid.UUID) valueobject.PartyRole {
	switch userID {
	case e.ShipperID:
		return valueobject.PartyShipper
	case e.CarrierID:
		return valueobject.PartyCarrier
	}
	return valueobject.PartyNone
}

func (e *ETTN) IsParty(userID uuid.UUID) bool {
	return e.PartyOf(userID) != valueobject.PartyNone
}

func (e *ETTN) Counterparty(userID uuid.UUID) uuid.UUID {
	if e.ShipperID == userID {
		return e.CarrierID
	}
	return e.ShipperID
}

func (e *ETTN) IsSignedBy(role valueobject.PartyRole) bool {
	switch role {
	case valueobject.PartyShipper:
		return e.ShipperSignature != nil
	case valueobject.PartyCarrier:
		return e.CarrierSignature != nil
	}
	return false
}

func (e *ETTN) IsFullySigned() bool {
	return e.Status == valueobject.ETTNStatusFullySigned
}

// ApplySignature заполняет слот подписи стороны и пересчитывает статус.
// Слоты независимы, порядок подписания на итог не влияет.
func (e *ETTN) ApplySignature(role valueobject.PartyRole, signature string, at time.Time) error {
	if e.IsSignedBy(role) {
		return apperror.ErrAlreadySigned
	}
	signedAt := at
	switch role {
	case valueobject.PartyShipper:
		e.ShipperSignature = &signature
		e.ShipperSignedAt = &signedAt
	case valueobject.PartyCarrier:
		e.CarrierSignature = &signature
		e.CarrierSignedAt = &signedAt
	default:
		return apperror.ErrNotParty
	}
	e.Status = valueobject.ETTNStatusForSlots(e.ShipperSignature != nil, e.CarrierSignature != nil)
	e.UpdatedAt = at
	return nil
}

func (e *ETTN) SignatureOf(role valueobject.PartyRole) *string {
	switch role {
	case valueobject.PartyShipper:
		return e.ShipperSignature
	case valueobject.PartyCarrier:
		return e.CarrierSignature
	}
	return nil
}

type documentPayload struct {
	ETTNNumber    string `json:"ettnNumber"`
	TransactionID string `json:"transactionId"`
	Cargo         string `json:"cargo"`
	Route         string `json:"route"`
	Weight        string `json:"weight"`
}

// DocumentPayload - каноническое представление документа, которое подписывается.
func (e *ETTN) DocumentPayload() ([]byte, error) {
	return json.Marshal(documentPayload{
		ETTNNumber:    e.Number,
		TransactionID: e.TransactionID.String(),
		Cargo:         e.CargoDescription,
		Route:         e.Origin + " -> " + e.Destination,
		Weight:        e.Weight.String(),
	})
}
