package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TransactionResponse struct {
	ID                uuid.UUID  `json:"id"`
	CargoID           uuid.UUID  `json:"cargoId"`
	BidID             uuid.UUID  `json:"bidId"`
	ShipperID         uuid.UUID  `json:"shipperId"`
	CarrierID         uuid.UUID  `json:"carrierId"`
	Status            string     `json:"status"`
	PickupConfirmed   bool       `json:"pickupConfirmed"`
	DeliveryConfirmed bool       `json:"deliveryConfirmed"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt"`
}

func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		CargoID:           t.CargoID,
		BidID:             t.BidID,
		ShipperID:         t.ShipperID,
		CarrierID:         t.CarrierID,
		Status:            string(t.Status),
		PickupConfirmed:   t.PickupConfirmed,
		DeliveryConfirmed: t.DeliveryConfirmed,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		CompletedAt:       t.CompletedAt,
	}
}

func ToTransactionResponses(items []*entity.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(items))
	for _, t := range items {
		responses = append(responses, ToTransactionResponse(t))
	}
	return responses
}
