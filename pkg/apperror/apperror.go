package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the service layer. Controllers map them to HTTP
// status codes with StatusCode; services wrap them with context via
// fmt.Errorf("...: %w", ...).
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream failure")
)

// ValidationError carries a message plus optional per-item details
// (e.g. missing CSV columns, per-row errors).
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
