package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/auth"
)

// AuthHandler обслуживает вход для разработки. В production маршрут не регистрируется.
type AuthHandler struct {
	devLoginUC *auth.DevLoginUseCase
}

func NewAuthHandler(devLoginUC *auth.DevLoginUseCase) *AuthHandler {
	return &AuthHandler{devLoginUC: devLoginUC}
}

func (h *AuthHandler) DevLogin(c *gin.Context) {
	var req dto.DevLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.devLoginUC.Execute(c.Request.Context(), req.Input())
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Created {
		response.Created(c, dto.ToDevLoginResponse(result))
		return
	}
	response.Success(c, dto.ToDevLoginResponse(result))
}
