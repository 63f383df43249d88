package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/bid"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/cargo"
)

type CargoHandler struct {
	cargoUC    *cargo.CargoUseCase
	listBidsUC *bid.ListBidsUseCase
}

func NewCargoHandler(cargoUC *cargo.CargoUseCase, listBidsUC *bid.ListBidsUseCase) *CargoHandler {
	return &CargoHandler{cargoUC: cargoUC, listBidsUC: listBidsUC}
}

// List обрабатывает GET /api/cargo?status=&userId=&limit=&offset=
func (h *CargoHandler) List(c *gin.Context) {
	input := cargo.ListInput{
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("userId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "некорректный userId")
			return
		}
		input.OwnerID = &ownerID
	}

	items, err := h.cargoUC.List(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCargoResponses(items))
}

func (h *CargoHandler) Get(c *gin.Context) {
	cargoID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID груза")
		return
	}

	item, err := h.cargoUC.Get(c.Request.Context(), cargoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCargoResponse(item))
}

func (h *CargoHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.CreateCargoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	item, err := h.cargoUC.Create(c.Request.Context(), userID, req.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToCargoResponse(item))
}

// Update обрабатывает PATCH /api/cargo/:id - частичное изменение активного груза.
func (h *CargoHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	cargoID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID груза")
		return
	}

	var req dto.UpdateCargoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	item, err := h.cargoUC.Update(c.Request.Context(), userID, cargoID, req.Update())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCargoResponse(item))
}

// Cancel обрабатывает DELETE /api/cargo/:id - груз снимается с торгов, запись остаётся.
func (h *CargoHandler) Cancel(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	cargoID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID груза")
		return
	}

	item, err := h.cargoUC.Cancel(c.Request.Context(), userID, cargoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCargoResponse(item))
}

func (h *CargoHandler) ListBids(c *gin.Context) {
	cargoID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID груза")
		return
	}

	bids, err := h.listBidsUC.ForCargo(c.Request.Context(), cargoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBidResponses(bids))
}
