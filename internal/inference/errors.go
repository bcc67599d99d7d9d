package inference

import (
	"errors"
	"fmt"
)

// Classified inference errors.
// The pipeline retries only errors that are transient from the caller's
// point of view; everything else fails the enrichment immediately.
//
// Design decision: We use package-level sentinel errors wrapped with
// fmt.Errorf("%w") at call sites. Callers then classify with errors.Is
// instead of matching status codes or message strings.
var (
	// ErrRateLimited is returned when the backend throttled the request
	// (HTTP 429). Retryable after backoff.
	ErrRateLimited = errors.New("inference: rate limited")

	// ErrTransient is returned for backend-side failures (HTTP 5xx) and
	// network-level errors. Retryable.
	ErrTransient = errors.New("inference: transient backend error")

	// ErrInvalidInput is returned when the backend rejected the request
	// as malformed (HTTP 400/413/422). Not retryable; retrying the same
	// payload cannot succeed.
	ErrInvalidInput = errors.New("inference: invalid input")

	// ErrAuth is returned when the API key is missing, invalid, or lacks
	// permission (HTTP 401/403). Not retryable.
	ErrAuth = errors.New("inference: authentication failed")

	// ErrEmptyResponse is returned when the backend answered 200 with no
	// usable completion. Not retryable.
	ErrEmptyResponse = errors.New("inference: empty response")
)

// IsTransient reports whether err is worth retrying with backoff.
// Rate limits count as transient: the original failure cause goes away
// on its own once the window resets.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

// classifyStatus maps an HTTP status code to a classified error.
// The body snippet is included for operators reading the logs.
func classifyStatus(status int, body string) error {
	switch {
	case status == 429:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, status, body)
	case status == 401 || status == 403:
		return fmt.Errorf("%w: status %d: %s", ErrAuth, status, body)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrTransient, status, body)
	case status >= 400:
		return fmt.Errorf("%w: status %d: %s", ErrInvalidInput, status, body)
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", ErrTransient, status, body)
	}
}
