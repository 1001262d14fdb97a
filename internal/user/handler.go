package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
	"danceslot/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register a dancer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body user.RegisterRequest true "Account"
// @Success      201 {object} user.AuthResponse
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Profile godoc
// @Summary      My profile
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.User
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /me/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	id, ok := dancer(c)
	if !ok {
		return
	}

	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, u)
}

// UpdateProfile godoc
// @Summary      Update my profile
// @Description  Partial update of name and phone
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body user.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} user.User
// @Failure      400 {object} api.ValidationErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /me/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := dancer(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, u)
}

// dancer returns the caller's user ID. The administrator has no profile.
func dancer(c *gin.Context) (string, bool) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
		return "", false
	}
	if id.IsAdmin() {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: ErrUserNotFound.Message})
		return "", false
	}
	return id.UserID, true
}
