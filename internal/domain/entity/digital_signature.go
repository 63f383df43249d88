package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type SignatureMetadata struct {
	Role valueobject.PartyRole `json:"role"`
}

// DigitalSignature - запись аудита, добавляется при каждой подписи е-ТТН.
type DigitalSignature struct {
	ID                uuid.UUID
	ETTNID            uuid.UUID
	UserID            uuid.UUID
	SignatureData     string
	CertificateID     string
	CertificateExpiry *time.Time
	SignedAt          time.Time
	IsValid           bool
	Metadata          SignatureMetadata
}

func NewDigitalSignature(ettnID, userID uuid.UUID, role valueobject.PartyRole, signature string, cert *Certificate, at time.Time) *DigitalSignature {
	expiry := cert.ValidUntil
	return &DigitalSignature{
		ID:                uuid.New(),
		ETTNID:            ettnID,
		UserID:            userID,
		SignatureData:     signature,
		CertificateID:     cert.ID,
		CertificateExpiry: &expiry,
		SignedAt:          at,
		IsValid:           true,
		Metadata:          SignatureMetadata{Role: role},
	}
}

// IsCertificateExpired сообщает, истёк ли сертификат, которым сделана подпись.
func (s *DigitalSignature) IsCertificateExpired(now time.Time) bool {
	return s.CertificateExpiry != nil && now.After(*s.CertificateExpiry)
}
