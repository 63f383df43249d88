package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/dto"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/dashboard"
)

type DashboardHandler struct {
	dashboardUC *dashboard.DashboardUseCase
}

func NewDashboardHandler(dashboardUC *dashboard.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	summary, err := h.dashboardUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDashboardResponse(summary))
}
