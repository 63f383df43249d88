package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type CreateCargoRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    *string    `json:"description"`
	Category       string     `json:"category" binding:"required"`
	Origin         string     `json:"origin" binding:"required"`
	Destination    string     `json:"destination" binding:"required"`
	Weight         float64    `json:"weight" binding:"gte=0"`
	Price          float64    `json:"price" binding:"gte=0"`
	PickupDate     time.Time  `json:"pickupDate" binding:"required"`
	DeliveryDate   *time.Time `json:"deliveryDate"`
	AuctionEndDate *time.Time `json:"auctionEndDate"`
}

func (r CreateCargoRequest) Params() entity.CargoParams {
	return entity.CargoParams{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Origin:         r.Origin,
		Destination:    r.Destination,
		Weight:         r.Weight,
		Price:          r.Price,
		PickupDate:     r.PickupDate,
		DeliveryDate:   r.DeliveryDate,
		AuctionEndDate: r.AuctionEndDate,
	}
}

type UpdateCargoRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Category       *string    `json:"category"`
	Origin         *string    `json:"origin"`
	Destination    *string    `json:"destination"`
	Weight         *float64   `json:"weight"`
	Price          *float64   `json:"price"`
	PickupDate     *time.Time `json:"pickupDate"`
	DeliveryDate   *time.Time `json:"deliveryDate"`
	AuctionEndDate *time.Time `json:"auctionEndDate"`
}

func (r UpdateCargoRequest) Update() entity.CargoUpdate {
	return entity.CargoUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Origin:         r.Origin,
		Destination:    r.Destination,
		Weight:         r.Weight,
		Price:          r.Price,
		PickupDate:     r.PickupDate,
		DeliveryDate:   r.DeliveryDate,
		AuctionEndDate: r.AuctionEndDate,
	}
}

type CargoResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Category       string     `json:"category"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	Weight         float64    `json:"weight"`
	Price          float64    `json:"price"`
	Currency       string     `json:"currency"`
	PickupDate     time.Time  `json:"pickupDate"`
	DeliveryDate   *time.Time `json:"deliveryDate"`
	AuctionEndDate *time.Time `json:"auctionEndDate"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ToCargoResponse(c *entity.Cargo) CargoResponse {
	return CargoResponse{
		ID:             c.ID,
		UserID:         c.OwnerID,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Origin:         c.Origin,
		Destination:    c.Destination,
		Weight:         float64(c.Weight),
		Price:          c.Price.Amount,
		Currency:       c.Price.Currency,
		PickupDate:     c.PickupDate,
		DeliveryDate:   c.DeliveryDate,
		AuctionEndDate: c.AuctionEndDate,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ToCargoResponses(items []*entity.Cargo) []CargoResponse {
	responses := make([]CargoResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, ToCargoResponse(c))
	}
	return responses
}
