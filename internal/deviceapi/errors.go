package deviceapi

import (
	"errors"
	"fmt"
)

// APIError is a failed round trip to the device cloud. StatusCode 0 means
// the request never produced an HTTP response (network failure, timeout).
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("device api: %s: %v", e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("device api: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("device api: status %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// IsRetryable reports whether retrying the call could plausibly succeed:
// network failures and 5xx/429 responses are transient, while 4xx responses
// (bad token, unknown device) will keep failing.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// Unknown error shape: let the retry budget decide.
		return true
	}
	if apiErr.StatusCode == 0 {
		return true
	}
	return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
}
