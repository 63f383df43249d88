package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/bid"
)

type BidHandler struct {
	createBidUC *bid.CreateBidUseCase
	decideBidUC *bid.DecideBidUseCase
	listBidsUC  *bid.ListBidsUseCase
}

func NewBidHandler(
	createBidUC *bid.CreateBidUseCase,
	decideBidUC *bid.DecideBidUseCase,
	listBidsUC *bid.ListBidsUseCase,
) *BidHandler {
	return &BidHandler{
		createBidUC: createBidUC,
		decideBidUC: decideBidUC,
		listBidsUC:  listBidsUC,
	}
}

func (h *BidHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.createBidUC.Execute(c.Request.Context(), userID, bid.CreateBidInput{
		CargoID:      req.CargoID,
		Amount:       req.BidAmount,
		DeliveryTime: req.DeliveryTime,
		VehicleType:  req.VehicleType,
		Message:      req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToBidResponse(created))
}

// UpdateStatus обрабатывает POST|PATCH /api/bids/:id/status {status: accepted|rejected}.
func (h *BidHandler) UpdateStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	bidID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID ставки")
		return
	}

	var req dto.UpdateBidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.decideBidUC.Execute(c.Request.Context(), userID, bidID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.DecideBidResponse{Bid: dto.ToBidResponse(result.Bid)}
	if result.Transaction != nil {
		tx := dto.ToTransactionResponse(result.Transaction)
		resp.Transaction = &tx
	}
	response.Success(c, resp)
}

func (h *BidHandler) ListMy(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	bids, err := h.listBidsUC.ForCarrier(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBidResponses(bids))
}
