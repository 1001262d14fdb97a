package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"danceslot/internal/apperror"
	"danceslot/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error" example:"validation failed"`
	Fields map[string]string `json:"fields"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store,omitempty" example:"postgres"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// RespondError writes err with the status it carries. Errors without a
// status are logged and reported as fallback with 500.
func RespondError(c *gin.Context, err error, fallback string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.WithError(err).Errorw(fallback, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
		return
	}

	switch {
	case len(appErr.Fields) > 0:
		c.JSON(appErr.Status, ValidationErrorResponse{Error: appErr.Message, Fields: appErr.Fields})
	case appErr.Status == http.StatusServiceUnavailable:
		logger.WithError(err).Warnw("store unavailable", "path", c.FullPath())
		c.JSON(appErr.Status, ErrorResponse{Error: appErr.Message})
	default:
		c.JSON(appErr.Status, ErrorResponse{Error: appErr.Message})
	}
}
