package platformapi

import (
	"errors"
	"fmt"

	"postpilot/domain/model"
)

// Error is the typed failure returned by every platform client. It carries
// enough of the provider response (HTTP status, provider code/subcode, raw
// message) for retry decisions and user-facing classification.
type Error struct {
	Platform   model.Platform
	StatusCode int
	Code       int
	Subcode    int
	Message    string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s api error: status %d code %d: %s", e.Platform, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error: status %d: %s", e.Platform, e.StatusCode, e.Message)
}

// Retryable reports whether the failure is worth an automatic retry. Server
// errors (5xx) qualify; any non-Error (transport level) failure is treated as
// a network error and also qualifies.
func Retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err != nil
	}
	return apiErr.StatusCode >= 500
}

// Unauthorized reports whether the failure is an HTTP 401 from the provider.
func Unauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
