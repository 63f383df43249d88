package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type CreateBidRequest struct {
	CargoID      uuid.UUID `json:"cargoId" binding:"required"`
	BidAmount    float64   `json:"bidAmount" binding:"gte=0"`
	DeliveryTime string    `json:"deliveryTime" binding:"required"`
	VehicleType  string    `json:"vehicleType" binding:"required"`
	Message      *string   `json:"message"`
}

type UpdateBidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BidResponse struct {
	ID           uuid.UUID `json:"id"`
	CargoID      uuid.UUID `json:"cargoId"`
	CarrierID    uuid.UUID `json:"carrierId"`
	BidAmount    float64   `json:"bidAmount"`
	Currency     string    `json:"currency"`
	DeliveryTime string    `json:"deliveryTime"`
	VehicleType  string    `json:"vehicleType"`
	Message      *string   `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ToBidResponse(b *entity.Bid) BidResponse {
	return BidResponse{
		ID:           b.ID,
		CargoID:      b.CargoID,
		CarrierID:    b.CarrierID,
		BidAmount:    b.Amount.Amount,
		Currency:     b.Amount.Currency,
		DeliveryTime: b.DeliveryTime,
		VehicleType:  b.VehicleType,
		Message:      b.Message,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func ToBidResponses(bids []*entity.Bid) []BidResponse {
	responses := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		responses = append(responses, ToBidResponse(b))
	}
	return responses
}

// DecideBidResponse - при принятии ставки возвращается и созданная сделка.
type DecideBidResponse struct {
	Bid         BidResponse          `json:"bid"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
