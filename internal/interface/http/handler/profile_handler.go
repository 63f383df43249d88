package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/auth"
)

type ProfileHandler struct {
	profileUC *auth.ProfileUseCase
}

func NewProfileHandler(profileUC *auth.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profileUC: profileUC}
}

// Me обрабатывает GET /api/auth/user
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	user, err := h.profileUC.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные профиля")
		return
	}

	user, err := h.profileUC.UpdateProfile(c.Request.Context(), userID, req.Update())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

// ChangeRole обрабатывает PATCH /api/auth/user/change-role - смена своей роли.
func (h *ProfileHandler) ChangeRole(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные роли")
		return
	}

	user, err := h.profileUC.ChangeOwnRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}

// SetRole обрабатывает PATCH /api/auth/user/role - назначение роли администратором.
func (h *ProfileHandler) SetRole(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные роли")
		return
	}

	user, err := h.profileUC.SetRole(c.Request.Context(), userID, req.TargetUserID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(user))
}
