package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"danceslot/internal/api"
)

const ctxIdentity = "identity"

// QueryTokenParam carries the access token on websocket upgrades, where
// browsers cannot set an Authorization header.
const QueryTokenParam = "access_token"

var errMissingToken = errors.New("authorization header required")

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, tokens)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: authMessage(err)})
			return
		}

		c.Set(ctxIdentity, claims.Identity)
		c.Next()
	}
}

// OptionalAuth records the caller's identity when a valid access token is
// present and lets anonymous requests through.
func OptionalAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromRequest(c, tokens); err == nil {
			c.Set(ctxIdentity, claims.Identity)
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware or OptionalAuth.
func RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
			return
		}
		if id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(ctxIdentity)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func GetUserID(c *gin.Context) (string, bool) {
	id, ok := GetIdentity(c)
	return id.UserID, ok
}

func claimsFromRequest(c *gin.Context, tokens *Tokens) (*Claims, error) {
	raw, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	return tokens.Parse(raw, KindAccess)
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if c.IsWebsocket() {
			if raw := strings.TrimSpace(c.Query(QueryTokenParam)); raw != "" {
				return raw, nil
			}
		}
		return "", errMissingToken
	}

	scheme, raw, found := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !found || !strings.EqualFold(strings.TrimSpace(scheme), "Bearer") || raw == "" {
		return "", ErrInvalidToken
	}
	return raw, nil
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return "Authorization header required"
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, ErrInvalidTokenType):
		return "Access token required"
	case errors.Is(err, ErrUnknownRole):
		return "Unknown role"
	default:
		return "Invalid or malformed token"
	}
}
