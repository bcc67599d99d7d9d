package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// Analyzer is the capability one analysis stage implements.
//
// Design decision: a closed registry of StageSpec values resolved at
// pipeline construction, rather than runtime lookup of handlers by
// category. Misconfiguration then fails before execution, and the set
// of stages a run will attempt is fixed and inspectable up front.
type Analyzer interface {
	// Name returns the unique stage name, e.g. "content".
	Name() string

	// Category returns the audit dimension the stage's findings belong to.
	Category() model.Category

	// Ready reports whether the snapshot carries the input this stage
	// needs. When not ready, the returned reason is surfaced in a
	// Degraded("no input: ...") outcome without invoking the runner.
	Ready(facts *model.PageFacts) (bool, string)

	// Analyze inspects the read-only snapshot and returns findings.
	// On failure it may return the findings produced so far; the runner
	// keeps them as partial results for a possible Degraded outcome.
	// Analyze must not mutate facts.
	Analyze(ctx context.Context, facts *model.PageFacts) ([]model.Finding, error)
}

// StageSpec declares one stage of the pipeline.
type StageSpec struct {
	// Name is the unique stage name used in the outcome manifest.
	Name string

	// Category is the stage's audit dimension.
	Category model.Category

	// Cost is the stage's weight against the shared rate-limiter quota,
	// roughly proportional to its inference prompt size.
	Cost int64

	// MaxRetries is the stage's transient-failure retry budget.
	MaxRetries int

	// Timeout bounds the stage end to end, including quota wait and
	// retries.
	Timeout time.Duration

	// Analyzer is the resolved analysis implementation.
	Analyzer Analyzer
}

// validateStages checks the declared stage set against the shared quota.
// Returns a configuration error describing the first problem found.
func validateStages(stages []StageSpec, quota int64) error {
	if len(stages) == 0 {
		return ErrNoStages
	}

	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		if s.Name == "" || s.Analyzer == nil {
			return fmt.Errorf("%w: name=%q analyzer=%v", ErrInvalidStage, s.Name, s.Analyzer != nil)
		}
		if s.Cost <= 0 || s.Timeout <= 0 || s.MaxRetries < 0 {
			return fmt.Errorf("%w: %q: cost=%d timeout=%v retries=%d", ErrInvalidStage, s.Name, s.Cost, s.Timeout, s.MaxRetries)
		}
		if s.Cost > quota {
			return fmt.Errorf("%w: %q needs %d of %d", ErrCostExceedsQuota, s.Name, s.Cost, quota)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateStage, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
