package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/ettn"
)

type ETTNHandler struct {
	createETTNUC *ettn.CreateETTNUseCase
	getETTNUC    *ettn.GetETTNUseCase
	signETTNUC   *ettn.SignETTNUseCase
	verifyETTNUC *ettn.VerifyETTNUseCase
}

func NewETTNHandler(
	createETTNUC *ettn.CreateETTNUseCase,
	getETTNUC *ettn.GetETTNUseCase,
	signETTNUC *ettn.SignETTNUseCase,
	verifyETTNUC *ettn.VerifyETTNUseCase,
) *ETTNHandler {
	return &ETTNHandler{
		createETTNUC: createETTNUC,
		getETTNUC:    getETTNUC,
		signETTNUC:   signETTNUC,
		verifyETTNUC: verifyETTNUC,
	}
}

func (h *ETTNHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.CreateETTNRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TransactionID == uuid.Nil {
		response.BadRequest(c, "не указан transactionId")
		return
	}

	doc, err := h.createETTNUC.Execute(c.Request.Context(), userID, req.TransactionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToETTNResponse(doc))
}

func (h *ETTNHandler) Get(c *gin.Context) {
	userID, ettnID, ok := h.params(c)
	if !ok {
		return
	}

	doc, err := h.getETTNUC.ByID(c.Request.Context(), userID, ettnID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToETTNResponse(doc))
}

// Sign обрабатывает PATCH /api/ettn/:id/sign. Роль подписанта определяется по сделке.
func (h *ETTNHandler) Sign(c *gin.Context) {
	userID, ettnID, ok := h.params(c)
	if !ok {
		return
	}

	doc, err := h.signETTNUC.Execute(c.Request.Context(), userID, ettnID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToETTNResponse(doc))
}

func (h *ETTNHandler) Signatures(c *gin.Context) {
	userID, ettnID, ok := h.params(c)
	if !ok {
		return
	}

	signatures, err := h.getETTNUC.Signatures(c.Request.Context(), userID, ettnID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDigitalSignatureResponses(signatures))
}

func (h *ETTNHandler) Verify(c *gin.Context) {
	userID, ettnID, ok := h.params(c)
	if !ok {
		return
	}

	report, err := h.verifyETTNUC.Execute(c.Request.Context(), userID, ettnID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToVerificationResponse(report))
}

func (h *ETTNHandler) params(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, uuid.Nil, false
	}
	ettnID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID е-ТТН")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, ettnID, true
}
