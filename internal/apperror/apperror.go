package apperror

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// Error is an error that knows which HTTP status it maps to.
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches on status and message so wrapped sentinels still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

var (
	ErrValidation       = New(http.StatusBadRequest, "validation failed")
	ErrNotFound         = New(http.StatusNotFound, "resource not found")
	ErrStoreUnavailable = New(http.StatusServiceUnavailable, "storage is unavailable, try again later")
)

// Validation builds a field-level validation error.
func Validation(fields map[string]string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: ErrValidation.Message, Fields: fields}
}

// Field is a shortcut for a single-field validation error.
func Field(name, message string) *Error {
	return Validation(map[string]string{name: message})
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusBadRequest
}

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// StatusOf returns the HTTP status for err, 500 for unknown errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// FromStore converts connectivity failures from the database driver into
// ErrStoreUnavailable and leaves every other error untouched.
func FromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivity(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08: connection exception, 57P: operator intervention
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P")
	}
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "sql: database is closed")
}
