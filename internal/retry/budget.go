package retry

import (
	"context"
	"math"
	"time"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// BudgetTracker owns the timing state for one top-level retry session:
// session start time, time of the last attempt, the shrinking total time
// budget, and the per-attempt timeout slice currently in force.
//
// Timers advance monotonically within a session and are rewound only by
// StartSession/EndSession. Not safe for concurrent use; a tracker belongs
// to exactly one orchestrator.
type BudgetTracker struct {
	// budget is the total wall-clock allotment for one retry sequence,
	// including sleeps and reconnects. Zero disables the budget.
	budget time.Duration

	firstAttempt   time.Time
	lastAttempt    time.Time
	currentTimeout time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// TrackerOption is a functional option for configuring a BudgetTracker.
type TrackerOption func(*BudgetTracker)

// WithClock replaces the wall clock. Tests use this for deterministic
// backoff arithmetic.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *BudgetTracker) {
		t.now = now
	}
}

// WithSleep replaces the blocking sleep. Tests use this to record requested
// delays without waiting them out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) TrackerOption {
	return func(t *BudgetTracker) {
		t.sleep = sleep
	}
}

// NewBudgetTracker creates a tracker for the given total budget.
// A zero budget means pure uncapped exponential backoff: no deadline and no
// dynamic timeout manipulation.
func NewBudgetTracker(budget time.Duration, opts ...TrackerOption) *BudgetTracker {
	t := &BudgetTracker{
		budget: budget,
		now:    time.Now,
		sleep:  timerSleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// timerSleep blocks for d, waking early if the context is canceled.
func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Budgeted reports whether a total time budget is configured.
func (t *BudgetTracker) Budgeted() bool { return t.budget > 0 }

// Active reports whether a session is in progress.
func (t *BudgetTracker) Active() bool { return !t.firstAttempt.IsZero() }

// CurrentTimeout returns the per-attempt timeout slice currently in force.
// Zero means no dynamic slice is active and static defaults apply.
func (t *BudgetTracker) CurrentTimeout() time.Duration { return t.currentTimeout }

// StartSession records the session start. The initial timeout slice is half
// the total budget, leaving the other half for backoff sleeps and reconnects.
func (t *BudgetTracker) StartSession() {
	now := t.now()
	t.firstAttempt = now
	t.lastAttempt = now
	if t.Budgeted() {
		t.currentTimeout = t.budget / 2
	}
}

// ComputeBackoff returns how long to sleep before the next attempt, how much
// of the total budget remains, and whether the budget is exhausted.
//
// The schedule is 2^(n/2) seconds for failed attempt n (~1.41s, 2s, 2.83s,
// 4s, 5.66s, 8s, ...), counted from the start of the failed attempt: time
// the attempt itself burned is deducted from the sleep. The sleep is clamped
// to at most half the remaining budget so there is always time left to
// actually run the retried attempt.
func (t *BudgetTracker) ComputeBackoff(failedAttempts int) (sleep, timeLeft time.Duration, exhausted bool) {
	now := t.now()

	schedule := time.Duration(math.Pow(2, float64(failedAttempts)/2) * float64(time.Second))
	elapsedThisAttempt := now.Sub(t.lastAttempt)
	sleep = schedule - elapsedThisAttempt

	timeLeft = retrydb.UnboundedTimeLeft
	if t.Budgeted() {
		timeLeft = t.budget - now.Sub(t.firstAttempt)
		if timeLeft < 0 {
			return 0, timeLeft, true
		}
	}

	if sleep < 0 {
		sleep = 0
	}
	if max := timeLeft / 2; sleep > max {
		sleep = max
	}
	return sleep, timeLeft, false
}

// ApplySleep suspends the caller for the given duration, waking early only
// when the context is canceled.
func (t *BudgetTracker) ApplySleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return t.sleep(ctx, d)
}

// NextTimeoutSlice halves the remaining time into the slice for the next
// attempt, floored to whole seconds and never below MinTimeoutSlice to
// avoid timeout thrashing.
func (t *BudgetTracker) NextTimeoutSlice(timeLeft time.Duration) time.Duration {
	slice := timeLeft / 2
	if slice < retrydb.MinTimeoutSlice {
		slice = retrydb.MinTimeoutSlice
	}
	return slice.Truncate(time.Second)
}

// RefreshTimeoutSlice recomputes the timeout slice from the budget remaining
// right now and makes it current. Only meaningful when a budget is
// configured; otherwise returns zero and changes nothing.
func (t *BudgetTracker) RefreshTimeoutSlice() time.Duration {
	if !t.Budgeted() {
		return 0
	}
	timeLeft := t.budget - t.now().Sub(t.firstAttempt)
	t.currentTimeout = t.NextTimeoutSlice(timeLeft)
	return t.currentTimeout
}

// MarkAttempt records "now" as the start of the next attempt. Called after
// sleeping so the next elapsed-time measurement includes reconnection cost.
func (t *BudgetTracker) MarkAttempt() {
	t.lastAttempt = t.now()
}

// EndSession resets the session clocks. If any attempt failed under a
// configured budget, the dynamic slice is cleared so the next session
// recomputes budget/2 fresh.
func (t *BudgetTracker) EndSession(failed bool) {
	t.firstAttempt = time.Time{}
	t.lastAttempt = time.Time{}
	if failed && t.Budgeted() {
		t.currentTimeout = 0
	}
}
