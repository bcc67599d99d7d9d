package model

import "time"

// OutcomeStatus is the tag of the per-stage result variant.
// Exactly one Outcome exists per declared stage per run.
type OutcomeStatus int

const (
	// OutcomeSuccess means the stage completed and its findings are full-fidelity.
	OutcomeSuccess OutcomeStatus = iota

	// OutcomeDegraded means the stage produced findings but with reduced
	// fidelity, e.g. enrichment failed after retries or the stage had no
	// input to analyze. Reason explains the degradation.
	OutcomeDegraded

	// OutcomeFailed means the stage produced no usable findings.
	// Err/ErrMessage carry the cause. A failed stage never aborts the run.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one analysis stage.
//
// Design decision: a tagged struct rather than an interface with three
// implementations. The aggregator, the report writers, and the history DB
// all switch on Status; a flat struct serializes directly and keeps those
// consumers free of type assertions.
type Outcome struct {
	// Stage is the declared stage name the outcome belongs to.
	Stage string `json:"stage"`

	// Category is the stage's declared category, copied here so report
	// assembly does not need the stage registry.
	Category Category `json:"category"`

	// Status tags the variant.
	Status OutcomeStatus `json:"-"`

	// StatusText is the string form of Status for serialization.
	StatusText string `json:"status"`

	// Findings are the stage's findings in the order it emitted them.
	// Non-empty for Success, possibly non-empty for Degraded, always
	// empty for Failed.
	Findings []Finding `json:"findings,omitempty"`

	// Reason explains a degraded outcome. Empty otherwise.
	Reason string `json:"reason,omitempty"`

	// Err is the failure cause. Excluded from JSON; ErrMessage carries
	// the string form.
	Err error `json:"-"`

	// ErrMessage is the string representation of Err for serialization.
	ErrMessage string `json:"error,omitempty"`

	// Attempts is how many times the analyzer ran, including retries.
	// Zero when the stage was short-circuited before running.
	Attempts int `json:"attempts"`

	// Elapsed is the wall-clock time the stage consumed.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewSuccess builds a success outcome for the named stage.
func NewSuccess(stage string, category Category, findings []Finding) Outcome {
	return Outcome{
		Stage:      stage,
		Category:   category,
		Status:     OutcomeSuccess,
		StatusText: OutcomeSuccess.String(),
		Findings:   findings,
	}
}

// NewDegraded builds a degraded outcome carrying whatever findings survived.
func NewDegraded(stage string, category Category, findings []Finding, reason string) Outcome {
	return Outcome{
		Stage:      stage,
		Category:   category,
		Status:     OutcomeDegraded,
		StatusText: OutcomeDegraded.String(),
		Findings:   findings,
		Reason:     reason,
	}
}

// NewFailed builds a failed outcome. The error must be non-nil.
func NewFailed(stage string, category Category, err error) Outcome {
	o := Outcome{
		Stage:      stage,
		Category:   category,
		Status:     OutcomeFailed,
		StatusText: OutcomeFailed.String(),
		Err:        err,
	}
	if err != nil {
		o.ErrMessage = err.Error()
	}
	return o
}

// Usable reports whether the outcome carries findings a report can show.
func (o Outcome) Usable() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeDegraded
}
