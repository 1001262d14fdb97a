package calendar

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
)

type Handler struct {
	service Service
	clock   Clock
	loc     *time.Location
}

func NewHandler(service Service, clock Clock, loc *time.Location) *Handler {
	return &Handler{
		service: service,
		clock:   clock,
		loc:     loc,
	}
}

// @Summary      Booking window
// @Description  Current calendar limits and the dates they allow
// @Tags         calendar
// @Produce      json
// @Success      200 {object} calendar.WindowResponse
// @Router       /calendar/limits [get]
func (h *Handler) GetLimits(c *gin.Context) {
	c.JSON(http.StatusOK, h.window(h.service.GetLimits(c.Request.Context())))
}

// @Summary      Update booking window
// @Description  Admin-only: a maximum below the minimum is raised to it
// @Tags         admin,calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body calendar.SetLimitsRequest true "Limits payload"
// @Success      200 {object} calendar.WindowResponse
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/calendar/limits [put]
func (h *Handler) SetLimits(c *gin.Context) {
	var req SetLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	limits, err := h.service.SetLimits(c.Request.Context(), *req.MinDaysAhead, *req.MaxDaysAhead)
	if err != nil {
		api.RespondError(c, err, "Failed to save calendar limits")
		return
	}

	c.JSON(http.StatusOK, h.window(limits))
}

func (h *Handler) window(l Limits) WindowResponse {
	today := Today(h.clock(), h.loc)
	from, to := Window(today, l)
	return WindowResponse{
		Limits: l,
		Today:  FormatDate(today),
		From:   FormatDate(from),
		To:     FormatDate(to),
	}
}
