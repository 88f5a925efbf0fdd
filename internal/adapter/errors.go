package adapter

import "errors"

// APIError is the uniform failure shape for course API calls. Message is
// safe to show to the user: it is either the server-provided error text or
// a generic description of what went wrong. StatusCode is zero when the
// request never produced a response (network failure).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Display extracts the user-facing message from a course API failure,
// falling back to the given text when the error carries none.
func Display(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status a handler should relay for a course API
// failure. Failures without a status (network errors) map to 502.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}
	return 502
}
