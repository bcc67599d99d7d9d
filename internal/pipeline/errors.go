package pipeline

import "errors"

// Configuration errors, detected at pipeline construction.
// These are the only pipeline errors that abort a run; they never reach
// execution.
var (
	// ErrNoStages is returned when a pipeline is built without stages.
	ErrNoStages = errors.New("pipeline: no stages declared")

	// ErrDuplicateStage is returned when two stages share a name.
	// Stage names key the outcome manifest, so they must be unique.
	ErrDuplicateStage = errors.New("pipeline: duplicate stage name")

	// ErrInvalidStage is returned when a stage has no name, no analyzer,
	// or a non-positive cost or timeout.
	ErrInvalidStage = errors.New("pipeline: invalid stage spec")

	// ErrCostExceedsQuota is returned when a stage declares a cost larger
	// than the shared quota; such a stage could never acquire its tokens.
	ErrCostExceedsQuota = errors.New("pipeline: stage cost exceeds shared quota")

	// ErrNilFacts is returned when Execute is called without a snapshot.
	ErrNilFacts = errors.New("pipeline: nil page facts")
)

// Execution errors, carried inside Failed outcomes.
var (
	// ErrStageTimeout marks a stage abandoned at a deadline, either its
	// own or the global pipeline deadline.
	ErrStageTimeout = errors.New("pipeline: stage timed out")

	// ErrRetriesExhausted marks a stage that burned its whole retry
	// budget without producing any findings.
	ErrRetriesExhausted = errors.New("pipeline: retries exhausted")

	// ErrInternal marks a declared stage with no recorded outcome after
	// the pipeline join. This is a defensive check; it indicates a bug
	// in the pipeline itself, not in the stage.
	ErrInternal = errors.New("pipeline: no outcome recorded for stage")
)
