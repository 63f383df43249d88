package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/reputation"
)

type RWSHandler struct {
	submitRatingUC  *reputation.SubmitRatingUseCase
	getReputationUC *reputation.GetReputationUseCase
}

func NewRWSHandler(submitRatingUC *reputation.SubmitRatingUseCase, getReputationUC *reputation.GetReputationUseCase) *RWSHandler {
	return &RWSHandler{submitRatingUC: submitRatingUC, getReputationUC: getReputationUC}
}

// Submit обрабатывает POST /api/rws - оценка контрагента по завершённой сделке.
func (h *RWSHandler) Submit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.submitRatingUC.Execute(c.Request.Context(), userID, req.Input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SubmitRatingResponse{
		Metric:   dto.ToRatingResponse(result.Rating),
		RWSScore: result.Reputation.RWSScore,
	})
}

func (h *RWSHandler) Get(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	profile, err := h.getReputationUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReputationResponse(profile))
}

func (h *RWSHandler) GetExtended(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	profile, err := h.getReputationUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToExtendedReputationResponse(profile))
}
