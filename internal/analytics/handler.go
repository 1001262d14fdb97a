package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Attendance analytics
// @Description  Admin-only: attendance rates with daily and weekly series
// @Tags         admin,analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} analytics.Report
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/analytics [get]
func (h *Handler) Report(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		api.RespondError(c, err, "Failed to build analytics")
		return
	}

	c.JSON(http.StatusOK, report)
}
