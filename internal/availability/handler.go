package availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
	"danceslot/internal/apperror"
	"danceslot/internal/calendar"
)

const defaultRangeDays = 7

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Resolve a date
// @Description  Bookable slots for one date. Dates outside the booking window return status out_of_range.
// @Tags         availability
// @Produce      json
// @Param        date path string true "YYYY-MM-DD"
// @Success      200 {object} availability.Result
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /availability/{date} [get]
func (h *Handler) ResolveDate(c *gin.Context) {
	date, err := calendar.ParseDate(c.Param("date"))
	if err != nil {
		api.RespondError(c, apperror.Field("date", "date must be a date in YYYY-MM-DD format"), "")
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), date)
	if err != nil {
		api.RespondError(c, err, "Failed to resolve availability")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Resolve a range of dates
// @Description  Calendar view: one result per day starting at from (default today)
// @Tags         availability
// @Produce      json
// @Param        from query string false "YYYY-MM-DD"
// @Param        days query int false "Number of days, 1..31" default(7)
// @Success      200 {array} availability.Result
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /availability [get]
func (h *Handler) ResolveRange(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			api.RespondError(c, apperror.Field("from", "from must be a date in YYYY-MM-DD format"), "")
			return
		}
		from = parsed
	} else {
		from = h.service.Today()
	}

	days := defaultRangeDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.RespondError(c, apperror.Field("days", "days must be a number"), "")
			return
		}
		days = n
	}

	results, err := h.service.ResolveRange(c.Request.Context(), from, days)
	if err != nil {
		api.RespondError(c, err, "Failed to resolve availability")
		return
	}

	c.JSON(http.StatusOK, results)
}
