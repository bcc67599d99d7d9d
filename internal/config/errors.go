package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no page URL is given to audit.
	ErrNoTarget = errors.New("no target specified: provide a page URL to audit")

	// ErrInvalidTarget is returned when the target is not an http(s) URL.
	ErrInvalidTarget = errors.New("invalid target: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	// Use 0 to disable retries entirely.
	ErrInvalidRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidQuota is returned when the shared quota is not positive.
	// A zero quota would block every stage forever.
	ErrInvalidQuota = errors.New("invalid quota units: must be positive")

	// ErrInvalidCallsPerMinute is returned when the pacing rate is not positive.
	ErrInvalidCallsPerMinute = errors.New("invalid calls per minute: must be positive")

	// ErrInvalidPriorityActions is returned when the priority list size
	// is not positive. The report always shows at least one action slot.
	ErrInvalidPriorityActions = errors.New("invalid priority actions: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
