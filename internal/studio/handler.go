package studio

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	template *Template
}

func NewHandler(template *Template) *Handler {
	return &Handler{template: template}
}

type WeekdaySchedule struct {
	Weekday string          `json:"weekday"`
	Slots   []RecurringSlot `json:"slots"`
}

// @Summary      List trainers
// @Tags         studio
// @Produce      json
// @Success      200 {array} studio.Trainer
// @Router       /trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	c.JSON(http.StatusOK, h.template.Trainers())
}

// @Summary      Weekly timetable
// @Description  Recurring slots for every weekday, Monday first
// @Tags         studio
// @Produce      json
// @Success      200 {array} studio.WeekdaySchedule
// @Router       /schedule/weekly [get]
func (h *Handler) WeeklySchedule(c *gin.Context) {
	week := h.template.Week()
	out := make([]WeekdaySchedule, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		out = append(out, WeekdaySchedule{Weekday: wd.String(), Slots: week[wd]})
	}
	c.JSON(http.StatusOK, out)
}
