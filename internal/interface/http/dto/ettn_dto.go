package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/ettn"
)

type CreateETTNRequest struct {
	TransactionID uuid.UUID `json:"transactionId"`
}

type ETTNResponse struct {
	ID               uuid.UUID  `json:"id"`
	TransactionID    uuid.UUID  `json:"transactionId"`
	ETTNNumber       string     `json:"ettnNumber"`
	CargoDescription string     `json:"cargoDescription"`
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	Weight           float64    `json:"weight"`
	ShipperID        uuid.UUID  `json:"shipperId"`
	CarrierID        uuid.UUID  `json:"carrierId"`
	ShipperSignature *string    `json:"shipperSignature"`
	ShipperSignedAt  *time.Time `json:"shipperSignedAt"`
	CarrierSignature *string    `json:"carrierSignature"`
	CarrierSignedAt  *time.Time `json:"carrierSignedAt"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func ToETTNResponse(e *entity.ETTN) ETTNResponse {
	return ETTNResponse{
		ID:               e.ID,
		TransactionID:    e.TransactionID,
		ETTNNumber:       e.Number,
		CargoDescription: e.CargoDescription,
		Origin:           e.Origin,
		Destination:      e.Destination,
		Weight:           float64(e.Weight),
		ShipperID:        e.ShipperID,
		CarrierID:        e.CarrierID,
		ShipperSignature: e.ShipperSignature,
		ShipperSignedAt:  e.ShipperSignedAt,
		CarrierSignature: e.CarrierSignature,
		CarrierSignedAt:  e.CarrierSignedAt,
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type SignatureMetadataResponse struct {
	Role string `json:"role"`
}

type DigitalSignatureResponse struct {
	ID                uuid.UUID                 `json:"id"`
	ETTNID            uuid.UUID                 `json:"ettnId"`
	UserID            uuid.UUID                 `json:"userId"`
	SignatureData     string                    `json:"signatureData"`
	CertificateID     string                    `json:"certificateId"`
	CertificateExpiry *time.Time                `json:"certificateExpiry"`
	SignedAt          time.Time                 `json:"signedAt"`
	IsValid           bool                      `json:"isValid"`
	Metadata          SignatureMetadataResponse `json:"metadata"`
}

func ToDigitalSignatureResponses(items []*entity.DigitalSignature) []DigitalSignatureResponse {
	responses := make([]DigitalSignatureResponse, 0, len(items))
	for _, s := range items {
		responses = append(responses, DigitalSignatureResponse{
			ID:                s.ID,
			ETTNID:            s.ETTNID,
			UserID:            s.UserID,
			SignatureData:     s.SignatureData,
			CertificateID:     s.CertificateID,
			CertificateExpiry: s.CertificateExpiry,
			SignedAt:          s.SignedAt,
			IsValid:           s.IsValid,
			Metadata:          SignatureMetadataResponse{Role: string(s.Metadata.Role)},
		})
	}
	return responses
}

type SlotVerificationResponse struct {
	Role   string `json:"role"`
	Signed bool   `json:"signed"`
	Valid  bool   `json:"valid"`
}

type VerificationResponse struct {
	ETTNID uuid.UUID                  `json:"ettnId"`
	Slots  []SlotVerificationResponse `json:"signatures"`
	Demo   bool                       `json:"demo"`
}

func ToVerificationResponse(r *ettn.VerificationReport) VerificationResponse {
	slots := make([]SlotVerificationResponse, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, SlotVerificationResponse{Role: string(s.Role), Signed: s.Signed, Valid: s.Valid})
	}
	return VerificationResponse{ETTNID: r.ETTNID, Slots: slots, Demo: r.Demo}
}
