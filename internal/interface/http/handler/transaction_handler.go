package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/ettn"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/transaction"
)

type TransactionHandler struct {
	getTransactionUC *transaction.GetTransactionUseCase
	advanceStatusUC  *transaction.AdvanceStatusUseCase
	getETTNUC        *ettn.GetETTNUseCase
}

func NewTransactionHandler(
	getTransactionUC *transaction.GetTransactionUseCase,
	advanceStatusUC *transaction.AdvanceStatusUseCase,
	getETTNUC *ettn.GetETTNUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		getTransactionUC: getTransactionUC,
		advanceStatusUC:  advanceStatusUC,
		getETTNUC:        getETTNUC,
	}
}

func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	items, err := h.getTransactionUC.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTransactionResponses(items))
}

func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	txID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID сделки")
		return
	}

	deal, err := h.getTransactionUC.Execute(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTransactionResponse(deal))
}

func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	txID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID сделки")
		return
	}

	var req dto.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	deal, err := h.advanceStatusUC.Execute(c.Request.Context(), userID, txID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTransactionResponse(deal))
}

func (h *TransactionHandler) GetETTN(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	txID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID сделки")
		return
	}

	doc, err := h.getETTNUC.ByTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToETTNResponse(doc))
}
