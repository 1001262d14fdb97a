package pricing

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

// @Summary      Pricing plans
// @Description  Active plans ordered by price
// @Tags         pricing
// @Produce      json
// @Success      200 {array} pricing.Plan
// @Router       /pricing [get]
func (h *Handler) ListActive(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListActive(c.Request.Context()))
}

// @Summary      All pricing plans
// @Tags         admin,pricing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} pricing.Plan
// @Router       /admin/pricing [get]
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List(c.Request.Context()))
}

// @Summary      Save pricing plans
// @Description  Admin-only: inserts or replaces the given plans by id
// @Tags         admin,pricing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body pricing.SavePlansRequest true "Plans"
// @Success      200 {array} pricing.Plan
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/pricing [put]
func (h *Handler) Save(c *gin.Context) {
	var req SavePlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	plans, err := h.service.Save(c.Request.Context(), req.Plans)
	if err != nil {
		api.RespondError(c, err, "Failed to save pricing plans")
		return
	}

	c.JSON(http.StatusOK, plans)
}
