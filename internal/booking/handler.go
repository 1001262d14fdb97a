package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
	"danceslot/internal/auth"
)

type Handler struct {
	service Service
	board   *Board
}

func NewHandler(service Service, board *Board) *Handler {
	return &Handler{
		service: service,
		board:   board,
	}
}

// Submit godoc
// @Summary      Book a class
// @Description  Books a slot returned by the availability endpoint. The slot is checked again before saving.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body booking.SubmitRequest true "Booking"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	req.UserID, _ = auth.GetUserID(c)

	b, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, b)
}

// SubmitContact godoc
// @Summary      Contact form
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body booking.ContactRequest true "Contact request"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ValidationErrorResponse
// @Router       /contact [post]
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	req.UserID, _ = auth.GetUserID(c)

	b, err := h.service.SubmitContact(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err, "Failed to send request")
		return
	}

	c.JSON(http.StatusCreated, b)
}

// MyBookings godoc
// @Summary      Current user's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} booking.Booking
// @Failure      401 {object} api.ErrorResponse
// @Router       /me/bookings [get]
func (h *Handler) MyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// List godoc
// @Summary      List bookings
// @Tags         admin,bookings
// @Security     BearerAuth
// @Produce      json
// @Param        search    query string false "Name, phone or email"
// @Param        status    query string false "pending, confirmed, canceled or attended"
// @Param        from      query string false "YYYY-MM-DD"
// @Param        to        query string false "YYYY-MM-DD, inclusive"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} api.Page[booking.Booking]
// @Failure      400 {object} api.ValidationErrorResponse
// @Router       /admin/bookings [get]
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	page, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, page)
}

// Board godoc
// @Summary      Booking board
// @Description  Latest bookings as held by the live admin board
// @Tags         admin,bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} booking.Booking
// @Router       /admin/bookings/board [get]
func (h *Handler) Board(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// Stats godoc
// @Summary      Bookings per status
// @Tags         admin,bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]int
// @Router       /admin/bookings/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.service.CountByStatus(c.Request.Context())
	if err != nil {
		api.RespondError(c, err, "Failed to count bookings")
		return
	}

	c.JSON(http.StatusOK, counts)
}

// SetStatus godoc
// @Summary      Change booking status
// @Tags         admin,bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Booking ID"
// @Param        request body booking.SetStatusRequest true "New status"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/bookings/{id}/status [patch]
func (h *Handler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.board.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		api.RespondError(c, err, "Failed to update booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// Delete godoc
// @Summary      Delete booking
// @Tags         admin,bookings
// @Security     BearerAuth
// @Param        id path string true "Booking ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/bookings/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.board.Delete(c.Request.Context(), c.Param("id")); err != nil {
		api.RespondError(c, err, "Failed to delete booking")
		return
	}

	c.Status(http.StatusNoContent)
}
