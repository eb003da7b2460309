package handler

import (
	"net/http"

	"stockwise/internal/middleware"
	"stockwise/internal/service"
	"stockwise/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup, authMW *middleware.Auth) {
	router.GET("/api/dashboard", authMW.RequireRole(), h.GetDashboard)
}

// @Summary      Get dashboard
// @Description  Catalog counts, stock health and sales totals (cancelled orders excluded from sales)
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.Dashboard}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.statisticsService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dashboard))
}
