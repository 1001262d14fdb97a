package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
	"danceslot/internal/logger"
)

// ErrInvalidCredentials is returned by Accounts for an unknown email or a
// wrong password. Both look the same to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Accounts checks the credentials of registered dancers.
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// AdminCredentials come from the environment. An empty hash disables admin
// login.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

func (a AdminCredentials) configured() bool {
	return a.Email != "" && a.PasswordHash != ""
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type Handler struct {
	admin    AdminCredentials
	accounts Accounts
	tokens   *Tokens
}

// NewHandler wires login for the administrator and, when accounts is not
// nil, for registered users.
func NewHandler(admin AdminCredentials, accounts Accounts, tokens *Tokens) *Handler {
	admin.Email = NormalizeEmail(admin.Email)
	return &Handler{admin: admin, accounts: accounts, tokens: tokens}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login godoc
// @Summary      Log in
// @Description  Admin credentials come from the environment; everyone else logs in with a registered account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body auth.LoginRequest true "Credentials"
// @Success      200 {object} auth.TokenPair
// @Failure      401 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if !h.admin.configured() && h.accounts == nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Login is not configured"})
		return
	}

	email := NormalizeEmail(req.Email)
	id, err := h.authenticate(c.Request.Context(), email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		logger.Warn("Failed login", "email", email, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		api.RespondError(c, err, "Failed to log in")
		return
	}

	pair, err := h.tokens.Issue(id)
	if err != nil {
		logger.WithError(err).Error("Failed to generate tokens")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to generate tokens"})
		return
	}

	logger.Info("Logged in", "user_id", id.UserID, "role", string(id.Role))
	c.JSON(http.StatusOK, pair)
}

// authenticate checks the admin first. The admin email never falls through
// to the account store.
func (h *Handler) authenticate(ctx context.Context, email, password string) (Identity, error) {
	if h.admin.configured() && email == h.admin.Email {
		if !CheckPassword(h.admin.PasswordHash, password) {
			return Identity{}, ErrInvalidCredentials
		}
		return Admin(email), nil
	}
	if h.accounts == nil {
		return Identity{}, ErrInvalidCredentials
	}
	return h.accounts.Authenticate(ctx, email, password)
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body auth.RefreshRequest true "Refresh token"
// @Success      200 {object} auth.TokenPair
// @Failure      401 {object} api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: authMessage(err)})
		return
	}

	c.JSON(http.StatusOK, pair)
}
