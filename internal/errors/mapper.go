// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Sentinel errors shared across the service layer.
var (
	// ErrMissingRequiredField rejects a compliment whose term, sender or
	// receiver id is zero. Callers treat it as a silent no-op: nothing is
	// written and nothing is surfaced to the user.
	ErrMissingRequiredField = errors.New("term_id, receiver_id and sender_id are required")

	// ErrForbidden means the requester is neither sender nor receiver of
	// the compliment being removed.
	ErrForbidden = errors.New("not allowed to modify this compliment")
)

// HTTPStatus converts repo/infra errors into an HTTP status code.
// Keeps handlers clean by centralizing error mapping.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrMissingRequiredField):
		return http.StatusBadRequest

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
