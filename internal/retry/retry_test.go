package retry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirkste/compass-automation/internal/retry"
)

// fakeClock advances only when the scheduler sleeps, so polling loops run
// instantly while still observing elapsed time.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newTestScheduler(t *testing.T, clock *fakeClock) *retry.Scheduler {
	s, err := retry.NewScheduler(retry.SchedulerConfig{
		Now:   clock.Now,
		Sleep: clock.Sleep,
	})
	require.NoError(t, err)
	return s
}

func TestPollUntil(t *testing.T) {
	tests := map[string]struct {
		probe      func(calls *int) retry.Probe[string]
		timeout    time.Duration
		interval   time.Duration
		expOK      bool
		expValue   string
		expAttempt int
		expDiag    string
		expSleeps  int
	}{
		"An immediately successful probe should return on the first attempt without sleeping": {
			probe: func(calls *int) retry.Probe[string] {
				return func(ctx context.Context) (string, bool, string) {
					*calls++
					return "found", true, ""
				}
			},
			timeout:    5 * time.Second,
			interval:   200 * time.Millisecond,
			expOK:      true,
			expValue:   "found",
			expAttempt: 1,
			expSleeps:  0,
		},

		"A probe that succeeds on the third attempt should sleep twice": {
			probe: func(calls *int) retry.Probe[string] {
				return func(ctx context.Context) (string, bool, string) {
					*calls++
					if *calls < 3 {
						return "", false, "not visible yet"
					}
					return "found", true, ""
				}
			},
			timeout:    5 * time.Second,
			interval:   200 * time.Millisecond,
			expOK:      true,
			expValue:   "found",
			expAttempt: 3,
			expSleeps:  2,
		},

		"A probe that never succeeds should time out with the last diagnostic": {
			probe: func(calls *int) retry.Probe[string] {
				return func(ctx context.Context) (string, bool, string) {
					*calls++
					return "", false, "0 candidates found, 0 eligible"
				}
			},
			timeout:    1 * time.Second,
			interval:   200 * time.Millisecond,
			expOK:      false,
			expAttempt: 6,
			expDiag:    "0 candidates found, 0 eligible",
			expSleeps:  5,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			s := newTestScheduler(t, clock)

			calls := 0
			out := retry.PollUntil(context.Background(), s, test.probe(&calls), test.timeout, test.interval)

			assert.Equal(t, test.expOK, out.OK)
			assert.Equal(t, test.expValue, out.Value)
			assert.Equal(t, test.expAttempt, out.Attempts)
			assert.Equal(t, test.expDiag, out.LastDiagnostic)
			assert.Len(t, clock.sleeps, test.expSleeps)
		})
	}
}

func TestPollUntilTimeoutBound(t *testing.T) {
	// The loop must terminate within timeout + interval of simulated time.
	clock := newFakeClock()
	s := newTestScheduler(t, clock)

	probe := func(ctx context.Context) (struct{}, bool, string) {
		return struct{}{}, false, "still waiting"
	}

	timeout := 2 * time.Second
	interval := 300 * time.Millisecond
	out := retry.PollUntil(context.Background(), s, probe, timeout, interval)

	assert.False(t, out.OK)
	assert.GreaterOrEqual(t, out.Elapsed, timeout)
	assert.Less(t, out.Elapsed, timeout+interval)
}

func TestPollUntilContextCancel(t *testing.T) {
	clock := newFakeClock()
	s := newTestScheduler(t, clock)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	probe := func(ctx context.Context) (struct{}, bool, string) {
		calls++
		cancel()
		return struct{}{}, false, "cancelled mid-probe"
	}

	out := retry.PollUntil(ctx, s, probe, time.Minute, time.Second)

	assert.False(t, out.OK)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "cancelled mid-probe", out.LastDiagnostic)
	assert.Equal(t, 1, calls)
}
