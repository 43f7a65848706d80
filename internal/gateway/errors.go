package gateway

import (
	"fmt"
	"net/http"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

// APIError is a non-2xx response other than a session-ending 401.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Param     string
	RequestID string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s (%s: %s)", e.Message, e.Code, e.Param)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap exposes the coded form so exit codes and logging classify it.
func (e *APIError) Unwrap() error {
	code := amplyerrors.ErrCodeAPIResponse
	if e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity {
		code = amplyerrors.ErrCodeFieldInvalid
	}
	ae := amplyerrors.New(code, e.Message)
	if e.Param != "" {
		ae.WithField(e.Param)
	}
	return ae
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= 500
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if !asAPIError(err, &apiErr) {
		return false
	}
	return apiErr.Status == status
}
