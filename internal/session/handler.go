package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List override sessions
// @Description  Admin-only: sessions on or after the given date with their booking counts
// @Tags         admin,sessions
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "YYYY-MM-DD"
// @Success      200 {array} session.SessionWithBookings
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context(), c.Query("from"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Get a session
// @Tags         admin,sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      200 {object} session.Session
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch session")
		return
	}

	c.JSON(http.StatusOK, sess)
}

// @Summary      Create a session
// @Description  Admin-only: add a date-specific session that replaces the weekly template for that date
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body session.CreateSessionRequest true "Session payload"
// @Success      201 {object} session.Session
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sess, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, sess)
}

// @Summary      Update a session
// @Description  Admin-only: partial update, omitted fields keep their value
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Param        request body session.UpdateSessionRequest true "Patch"
// @Success      200 {object} session.Session
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/sessions/{id} [patch]
func (h *Handler) UpdateSession(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sess, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		api.RespondError(c, err, "Failed to update session")
		return
	}

	c.JSON(http.StatusOK, sess)
}

// @Summary      Show or hide a session
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Param        request body session.SetActiveRequest true "Active flag"
// @Success      200 {object} session.Session
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/sessions/{id}/active [patch]
func (h *Handler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sess, err := h.service.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		api.RespondError(c, err, "Failed to update session")
		return
	}

	c.JSON(http.StatusOK, sess)
}

// @Summary      Delete a session
// @Description  Admin-only: bookings that reference the session are kept
// @Tags         admin,sessions
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		api.RespondError(c, err, "Failed to delete session")
		return
	}

	c.Status(http.StatusNoContent)
}
