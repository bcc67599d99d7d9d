package scrape

import "errors"

// Acquisition errors. Unlike stage errors, these abort the whole audit:
// without PageFacts there is nothing for any stage to analyze.
//
// Design decision: We use package-level sentinel errors so the CLI can
// translate each failure mode into a distinct exit message with errors.Is
// instead of string matching.
var (
	// ErrUnreachable is returned when the target host cannot be reached
	// at the network level (DNS failure, refused connection).
	ErrUnreachable = errors.New("scrape: target unreachable")

	// ErrTimeout is returned when the fetch or render exceeded its deadline.
	ErrTimeout = errors.New("scrape: fetch timed out")

	// ErrBlocked is returned when the target answered but refused the
	// request (401, 403, 429). Audit traffic is sometimes filtered by
	// bot protection; rendering mode may help.
	ErrBlocked = errors.New("scrape: request blocked by target")

	// ErrMalformed is returned when the response body could not be
	// parsed as HTML at all.
	ErrMalformed = errors.New("scrape: malformed page content")

	// ErrNoContent is returned when the page parsed but contained no
	// analyzable text, images, or links.
	ErrNoContent = errors.New("scrape: page has no analyzable content")
)
