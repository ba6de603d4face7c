package handler

import (
	"fmt"
	"net/http"
	"time"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/api"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatisticsHandler serves the manager reporting endpoints.
type StatisticsHandler struct {
	statisticsService service.StatisticsService
	exportService     service.ExportService
	auth              *middleware.AuthMiddleware
}

func NewStatisticsHandler(statisticsService service.StatisticsService, exportService service.ExportService, auth *middleware.AuthMiddleware) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, exportService: exportService, auth: auth}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/richieste", h.auth.RequireAuth(), middleware.RequireRole(api.RoleManager))
	{
		reports.GET("/stats", h.GetStatistics)
		reports.GET("/export", h.ExportRequests)
	}
}

// @Summary      Request statistics
// @Description  Count and cost total of purchase requests per status
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=api.RequestStats}
// @Failure      403  {object}  response.Response
// @Router       /richieste/stats [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	stats, err := h.statisticsService.RequestStats(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// @Summary      Export requests
// @Description  Spreadsheet of every purchase request
// @Tags         statistics
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      403  {object}  response.Response
// @Router       /richieste/export [get]
func (h *StatisticsHandler) ExportRequests(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	buf, err := h.exportService.ExportRequests(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("richieste_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
