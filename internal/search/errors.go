package search

import (
	"errors"
	"fmt"
)

// Classified errors providers return. The verifier maps all of them to
// lookup-failed verdicts; the distinction matters for the retained cause and
// for operators reading logs.
var (
	// ErrMissingAPIKey indicates the provider was built without credentials.
	ErrMissingAPIKey = errors.New("search API key not configured")

	// ErrAuth indicates the API rejected the credentials.
	ErrAuth = errors.New("search API authentication failed")

	// ErrRateLimited indicates the quota or rate limit was exceeded.
	ErrRateLimited = errors.New("search API rate limit exceeded")

	// ErrInvalidResponse indicates an unparsable API response.
	ErrInvalidResponse = errors.New("invalid response from search API")
)

// APIError carries the HTTP detail behind a failed search call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrMissingAPIKey) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited reports whether err is a quota or rate-limit failure.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
