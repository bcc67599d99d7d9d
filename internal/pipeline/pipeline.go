package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoscan/internal/model"
)

// Pipeline owns the declared stage set and runs it to completion.
type Pipeline struct {
	stages []StageSpec
	runner *StageRunner
	logger *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a pipeline over the declared stages. The stage set is
// validated here so configuration errors surface before any execution;
// quota is the shared rate-limiter quota used to reject unsatisfiable
// stage costs.
func New(stages []StageSpec, runner *StageRunner, quota int64, opts ...PipelineOption) (*Pipeline, error) {
	if err := validateStages(stages, quota); err != nil {
		return nil, err
	}

	p := &Pipeline{
		stages: stages,
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the terminal state of one pipeline run.
type Result struct {
	// Outcomes maps stage name to its terminal outcome. Exactly one
	// entry exists per declared stage.
	Outcomes map[string]model.Outcome

	// StageOrder preserves the declaration order for the aggregator.
	StageOrder []string

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Execute runs all stages concurrently against the shared read-only
// snapshot and joins on their terminal outcomes.
//
// Failure isolation: one stage's failure never short-circuits the rest;
// each stage independently reaches Success, Degraded, or Failed. The
// context's deadline is the global budget: stages still in flight when
// it expires wind down as Failed timeouts while finished stages keep
// their outcomes.
func (p *Pipeline) Execute(ctx context.Context, facts *model.PageFacts) (*Result, error) {
	if facts == nil {
		return nil, ErrNilFacts
	}

	start := time.Now()
	outcomes := make([]model.Outcome, len(p.stages))

	// Plain errgroup as a join point: stage goroutines always return nil
	// because failures are Outcome values, not errors.
	g := new(errgroup.Group)
	for i, spec := range p.stages {
		g.Go(func() error {
			// Stages whose input is absent short-circuit without
			// touching the runner or the rate limiter.
			if ready, reason := spec.Analyzer.Ready(facts); !ready {
				outcomes[i] = model.NewDegraded(spec.Name, spec.Category, nil, "no input: "+reason)
				return nil
			}
			outcomes[i] = p.runner.Run(ctx, spec, facts)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		Outcomes:   make(map[string]model.Outcome, len(p.stages)),
		StageOrder: make([]string, 0, len(p.stages)),
		Elapsed:    time.Since(start),
	}

	for i, spec := range p.stages {
		result.StageOrder = append(result.StageOrder, spec.Name)

		o := outcomes[i]
		// Defensive completeness check: a declared stage with no
		// recorded outcome is a pipeline bug, reported as an internal
		// failure for that stage rather than a crash of the whole run.
		if o.Stage == "" {
			o = model.NewFailed(spec.Name, spec.Category, fmt.Errorf("%w: %q", ErrInternal, spec.Name))
		}
		result.Outcomes[spec.Name] = o

		p.logger.Debug("stage finished",
			"stage", spec.Name,
			"status", o.StatusText,
			"findings", len(o.Findings),
			"attempts", o.Attempts,
			"elapsed", o.Elapsed)
	}

	return result, nil
}

// Stages returns the declared stage specs in declaration order.
func (p *Pipeline) Stages() []StageSpec {
	return p.stages
}
