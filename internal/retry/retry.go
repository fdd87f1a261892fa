package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/dirkste/compass-automation/internal/log"
)

// Outcome is the immutable result of one polling invocation.
type Outcome[T any] struct {
	OK       bool
	Value    T
	Attempts int
	Elapsed  time.Duration
	// LastDiagnostic is the probe's last reason for not succeeding, so a
	// timeout is explainable without re-running.
	LastDiagnostic string
}

// Probe is one fallible attempt at producing a value. It returns the value,
// whether it succeeded, and a diagnostic for the failure case.
type Probe[T any] func(ctx context.Context) (T, bool, string)

// SchedulerConfig is the configuration for the scheduler.
type SchedulerConfig struct {
	Logger log.Logger
	// Now and Sleep are injectable so tests can simulate elapsed time
	// without real delay.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

func (c *SchedulerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "retry.Scheduler"})

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Sleep == nil {
		c.Sleep = sleepCtx
	}

	return nil
}

// Scheduler runs bounded, cooperative polling loops. It is single-threaded
// by design: the caller blocks until success or timeout, because phases
// must observe each other's UI side effects strictly in order.
type Scheduler struct {
	logger log.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
}

// NewScheduler creates a new retry scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		logger: cfg.Logger,
		now:    cfg.Now,
		sleep:  cfg.Sleep,
	}, nil
}

// PollUntil repeatedly invokes probe, sleeping interval between attempts,
// until the probe succeeds, timeout elapses, or the context is cancelled.
// It returns on the first success and terminates within timeout + interval
// of wall time in the failure case.
func PollUntil[T any](ctx context.Context, s *Scheduler, probe Probe[T], timeout, interval time.Duration) Outcome[T] {
	var out Outcome[T]

	start := s.now()
	for {
		value, ok, diag := probe(ctx)
		out.Attempts++
		out.LastDiagnostic = diag
		out.Elapsed = s.now().Sub(start)

		if ok {
			out.OK = true
			out.Value = value
			return out
		}

		if ctx.Err() != nil {
			s.logger.Debugf("Polling cancelled after %d attempt(s): %s", out.Attempts, diag)
			return out
		}

		if out.Elapsed >= timeout {
			s.logger.Debugf("Polling timed out after %d attempt(s) in %s: %s", out.Attempts, out.Elapsed, diag)
			return out
		}

		s.sleep(ctx, interval)
		out.Elapsed = s.now().Sub(start)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
