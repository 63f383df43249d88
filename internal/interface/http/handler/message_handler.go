package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/chat"
)

type MessageHandler struct {
	chatUC *chat.ChatUseCase
}

func NewMessageHandler(chatUC *chat.ChatUseCase) *MessageHandler {
	return &MessageHandler{chatUC: chatUC}
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	msg, err := h.chatUC.Send(c.Request.Context(), userID, req.TransactionID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToMessageResponse(msg))
}

func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	txID, ok := parseUUIDParam(c, "transactionId")
	if !ok {
		response.BadRequest(c, "некорректный ID сделки")
		return
	}

	messages, err := h.chatUC.List(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToMessageResponses(messages))
}
