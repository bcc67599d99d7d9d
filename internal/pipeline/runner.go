package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nao1215/seoscan/internal/inference"
	"github.com/nao1215/seoscan/internal/model"
)

// RetryPolicy describes the shared backoff curve for transient failures.
//
// Design decision: one policy object used by every stage instead of
// per-call retry loops, so all stages share identical retry semantics
// and tests can reason about attempt counts in one place.
type RetryPolicy struct {
	// BaseDelay is the first retry delay, doubled on each further retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
}

// Backoff returns the delay before retry number attempt (0-based):
// BaseDelay doubled per attempt, capped at MaxDelay, plus up to one
// second of jitter scaled by the jitter fraction.
func (p RetryPolicy) Backoff(attempt int, jitter float64) time.Duration {
	delay := p.BaseDelay
	for range attempt {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay + time.Duration(jitter*float64(time.Second))
}

// StageRunner executes one stage with quota acquisition, a stage
// deadline, and bounded retries, converting every failure mode into an
// Outcome value.
type StageRunner struct {
	limiter *RateLimiter
	policy  RetryPolicy

	// isTransient classifies analyzer errors; only transient errors are
	// retried. Defaults to the inference taxonomy plus call deadlines.
	isTransient func(error) bool

	// sleep waits between retries, honoring cancellation. Injectable so
	// tests run without wall-clock delays.
	sleep func(ctx context.Context, d time.Duration) error

	// jitter yields the random backoff fraction in [0, 1).
	jitter func() float64

	logger *slog.Logger
}

// RunnerOption configures a StageRunner.
type RunnerOption func(*StageRunner)

// WithRetryPolicy sets the backoff curve.
func WithRetryPolicy(p RetryPolicy) RunnerOption {
	return func(r *StageRunner) {
		r.policy = p
	}
}

// WithTransientClassifier overrides error classification.
func WithTransientClassifier(f func(error) bool) RunnerOption {
	return func(r *StageRunner) {
		r.isTransient = f
	}
}

// WithSleep overrides the inter-retry sleep, mainly for tests.
func WithSleep(f func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *StageRunner) {
		r.sleep = f
	}
}

// WithJitter overrides the jitter source, mainly for tests.
func WithJitter(f func() float64) RunnerOption {
	return func(r *StageRunner) {
		r.jitter = f
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *StageRunner) {
		r.logger = logger
	}
}

// NewStageRunner creates a runner sharing the given limiter.
func NewStageRunner(limiter *RateLimiter, opts ...RunnerOption) *StageRunner {
	r := &StageRunner{
		limiter: limiter,
		policy: RetryPolicy{
			BaseDelay: 2 * time.Second,
			MaxDelay:  30 * time.Second,
		},
		isTransient: defaultTransient,
		sleep:       sleepCtx,
		jitter:      rand.Float64,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// defaultTransient treats rate limits, backend trouble, and per-call
// deadline overruns as retryable. A stage whose own deadline expired is
// caught separately before classification.
func defaultTransient(err error) bool {
	return inference.IsTransient(err) || errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one stage to a terminal Outcome. It never returns an
// error: timeouts, retry exhaustion, and analyzer failures all become
// Outcome values.
func (r *StageRunner) Run(ctx context.Context, spec StageSpec, facts *model.PageFacts) model.Outcome {
	start := time.Now()
	finish := func(o model.Outcome, attempts int) model.Outcome {
		o.Attempts = attempts
		o.Elapsed = time.Since(start)
		return o
	}

	stageCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	// The quota wait is bounded by the stage deadline; a stage that
	// cannot get its tokens in time is abandoned like any other timeout.
	release, err := r.limiter.Acquire(stageCtx, spec.Cost)
	if err != nil {
		return finish(model.NewFailed(spec.Name, spec.Category,
			fmt.Errorf("%w: waiting for quota: %v", ErrStageTimeout, err)), 0)
	}
	defer release()

	maxAttempts := spec.MaxRetries + 1
	var partial []model.Finding
	var lastErr error

	for attempt := range maxAttempts {
		findings, aerr := spec.Analyzer.Analyze(stageCtx, facts)
		attempts := attempt + 1

		if aerr == nil {
			return finish(model.NewSuccess(spec.Name, spec.Category, findings), attempts)
		}

		// Keep the best partial result across attempts.
		if len(findings) > 0 {
			partial = findings
		}
		lastErr = aerr

		// The stage deadline trumps everything: abandoned work is a
		// timeout failure even if the last error looked transient.
		if stageCtx.Err() != nil {
			return finish(model.NewFailed(spec.Name, spec.Category,
				fmt.Errorf("%w: %v", ErrStageTimeout, stageCtx.Err())), attempts)
		}

		if !r.isTransient(aerr) {
			return finish(model.NewFailed(spec.Name, spec.Category, aerr), attempts)
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := r.policy.Backoff(attempt, r.jitter())
		r.logger.Debug("stage retrying",
			"stage", spec.Name,
			"attempt", attempts,
			"delay", delay,
			"error", aerr)
		if serr := r.sleep(stageCtx, delay); serr != nil {
			return finish(model.NewFailed(spec.Name, spec.Category,
				fmt.Errorf("%w: %v", ErrStageTimeout, serr)), attempts)
		}
	}

	if len(partial) > 0 {
		reason := fmt.Sprintf("partial results after %d attempts: %v", maxAttempts, lastErr)
		return finish(model.NewDegraded(spec.Name, spec.Category, partial, reason), maxAttempts)
	}
	return finish(model.NewFailed(spec.Name, spec.Category,
		fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, maxAttempts, lastErr)), maxAttempts)
}
