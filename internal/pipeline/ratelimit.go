package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RateLimiter throttles the stages' shared use of the inference backend.
//
// It combines two mechanisms:
//   - a weighted semaphore holding the shared quota, acquired for the
//     whole time a stage runs so heavy stages displace light ones, and
//   - a calls-per-minute pacer that spaces out individual inference
//     calls across all stages.
//
// Design decision: golang.org/x/sync/semaphore serves waiters in FIFO
// order, which gives the no-starvation guarantee directly: a waiter is
// served as soon as everyone who asked before it has been. Acquire never
// fails on its own; only the caller's context bounds the wait.
type RateLimiter struct {
	quota int64
	sem   *semaphore.Weighted
	pacer *rate.Limiter

	mu    sync.Mutex
	inUse int64
}

// NewRateLimiter creates a limiter with the given shared quota and
// inference call pacing. callsPerMinute <= 0 disables pacing.
func NewRateLimiter(quota int64, callsPerMinute int) *RateLimiter {
	l := &RateLimiter{
		quota: quota,
		sem:   semaphore.NewWeighted(quota),
	}
	if callsPerMinute > 0 {
		l.pacer = rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), 1)
	}
	return l
}

// Acquire blocks until cost units of the shared quota are available,
// then returns a release function. The release function is idempotent
// and must be called exactly when the stage's in-flight work is done;
// deferring it guarantees the quota is reclaimed even when the stage
// fails. The only error Acquire returns is the caller's context error.
func (l *RateLimiter) Acquire(ctx context.Context, cost int64) (func(), error) {
	// Clamp outsized requests to the full quota. Construction-time
	// validation rejects such stages, so this only guards direct misuse.
	if cost > l.quota {
		cost = l.quota
	}

	if err := l.sem.Acquire(ctx, cost); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.inUse += cost
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			l.inUse -= cost
			l.mu.Unlock()
			l.sem.Release(cost)
		})
	}
	return release, nil
}

// WaitCall blocks until the next inference call is allowed under the
// calls-per-minute pacing. Stages call it immediately before each
// backend request.
func (l *RateLimiter) WaitCall(ctx context.Context) error {
	if l.pacer == nil {
		return nil
	}
	return l.pacer.Wait(ctx)
}

// Quota returns the total shared quota.
func (l *RateLimiter) Quota() int64 {
	return l.quota
}

// InUse returns the quota currently held by running stages.
func (l *RateLimiter) InUse() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}

// Utilization returns the held fraction of the quota, 0.0 to 1.0.
func (l *RateLimiter) Utilization() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return float64(l.inUse) / float64(l.quota)
}
