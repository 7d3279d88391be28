package retry

import (
	"context"

	"github.com/google/uuid"
	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// Orchestrator is the retry state machine. It executes a unit of database
// work and, on a transient failure, sleeps out the backoff schedule,
// tightens the timeout slice, forces a reconnect, and runs the work again —
// until success, a fatal error, or the attempt/budget ceiling.
//
// An Orchestrator exclusively owns its ConnectionProvider for the duration
// of a session and is NOT safe for concurrent use. Outside of a session,
// raw use of the connection gets no retry protection; that is a deliberate
// design boundary.
type Orchestrator struct {
	cfg        retrydb.Config
	provider   retrydb.ConnectionProvider
	classifier retrydb.ErrorClassifier
	logger     retrydb.Logger
	tracker    *BudgetTracker
	applier    *TimeoutApplier

	session *session
}

// session is the state of one top-level RunProtected call. At most one is
// active per orchestrator; reentrant calls while it exists bypass the retry
// machinery entirely.
type session struct {
	id      uuid.UUID
	mode    retrydb.Mode
	failed  int
	lastErr error
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithBudgetTracker replaces the orchestrator's budget tracker. Tests use
// this to inject a tracker with a fake clock and recorded sleeps.
func WithBudgetTracker(t *BudgetTracker) Option {
	return func(o *Orchestrator) {
		o.tracker = t
	}
}

// NewOrchestrator creates a retry orchestrator around the given connection.
// Panics if provider, classifier, or logger is nil. Out-of-range config
// values fall back to the documented defaults.
func NewOrchestrator(
	cfg retrydb.Config,
	provider retrydb.ConnectionProvider,
	classifier retrydb.ErrorClassifier,
	logger retrydb.Logger,
	opts ...Option,
) *Orchestrator {
	if provider == nil {
		panic("provider cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = retrydb.DefaultMaxAttempts
	}
	if cfg.TimeoutBudget < 0 {
		cfg.TimeoutBudget = 0
	}

	o := &Orchestrator{
		cfg:        cfg,
		provider:   provider,
		classifier: classifier,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracker == nil {
		o.tracker = NewBudgetTracker(cfg.TimeoutBudget)
	}
	o.applier = NewTimeoutApplier(provider, classifier, logger, cfg.AggressiveTimeouts)
	return o
}

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() retrydb.Config { return o.cfg }

// SetConfig replaces the configuration. Calling this while a retry session
// is in flight is unsafe and the resulting behavior is undefined.
func (o *Orchestrator) SetConfig(cfg retrydb.Config) { o.cfg = cfg }

// IsErrorRetryable pre-screens an error message against the same transient
// catalogue the retry loop uses.
func (o *Orchestrator) IsErrorRetryable(errText string) bool {
	return o.classifier.IsRetryable(errText)
}

// RunProtected executes work under retry protection and returns its error
// (or the terminal retry error) once the session ends.
//
// When the engine is disabled, or when called reentrantly while a session
// is already active, the work runs directly exactly once: nested retries
// are forbidden because partially-applied side effects inside an outer
// transaction are not safely replayable.
func (o *Orchestrator) RunProtected(ctx context.Context, mode retrydb.Mode, work retrydb.WorkFunc) error {
	if !o.cfg.Enabled {
		return work(ctx)
	}
	if o.session != nil {
		return work(ctx)
	}

	o.session = &session{id: uuid.New(), mode: mode}
	o.tracker.StartSession()
	defer o.endSession(ctx)

	for {
		// External cancellation is an immediate fatal transition.
		if err := ctx.Err(); err != nil {
			return err
		}

		err := work(ctx)
		if err == nil {
			return nil
		}

		o.session.failed++
		o.session.lastErr = err

		if terminal := o.handleFailure(ctx, err); terminal != nil {
			return terminal
		}
	}
}

// handleFailure decides what a failed attempt means. It returns nil when
// the orchestrator should loop back and run the work again, or a terminal
// error (fatal, budget exhausted, attempts exhausted) to surface.
//
// A failure during the forced reconnect is folded back into the same
// session's accounting as one more failed attempt rather than surfaced as
// a separate, uncorrelated error.
func (o *Orchestrator) handleFailure(ctx context.Context, err error) error {
	for {
		// A non-retryable error on a healthy connection is fatal and
		// propagates unmodified. Disconnection is presumptively retryable
		// no matter what the message says.
		if o.provider.IsConnected() && !o.classifier.IsRetryable(firstLine(err.Error())) {
			return err
		}

		if o.cfg.WarnOnRetry {
			o.logger.Warn("retrying %s after attempt %d of %d (session %s): %s",
				o.session.mode, o.session.failed, o.cfg.MaxAttempts,
				o.session.id, truncateText(firstLine(err.Error())))
		}

		sleep, _, exhausted := o.tracker.ComputeBackoff(o.session.failed)
		if exhausted {
			return &retrydb.BudgetExhaustedError{
				Attempts: o.session.failed,
				Budget:   o.cfg.TimeoutBudget,
				LastErr:  err,
			}
		}

		// Attempt-ceiling check happens before sleeping: a sleep no attempt
		// will ever use is pure waste.
		if o.session.failed >= o.cfg.MaxAttempts {
			return &retrydb.AttemptsExhaustedError{
				Attempts:    o.session.failed,
				MaxAttempts: o.cfg.MaxAttempts,
				LastErr:     err,
			}
		}

		if sleep > 0 {
			if serr := o.tracker.ApplySleep(ctx, sleep); serr != nil {
				return serr
			}
		}

		// Halve the remaining budget into the next attempt's slice and
		// stage it for the reconnect.
		if o.cfg.Budgeted() {
			o.applier.StageConnect(o.tracker.RefreshTimeoutSlice())
		}

		// Mark after sleeping so the next elapsed-time measurement includes
		// reconnection cost.
		o.tracker.MarkAttempt()

		o.provider.Disconnect(ctx)

		if cerr := o.provider.Connect(ctx); cerr != nil {
			o.session.failed++
			o.session.lastErr = cerr
			err = cerr
			continue
		}

		if o.cfg.Budgeted() {
			if aerr := o.applier.ApplySession(ctx, o.tracker.CurrentTimeout()); aerr != nil {
				return aerr
			}
		}

		return nil
	}
}

// endSession tears down the session state. After a failed-and-budgeted
// sequence the baseline slice is pushed back so the connection is not left
// running on an artificially tight timeout.
func (o *Orchestrator) endSession(ctx context.Context) {
	failed := o.session.failed > 0
	o.tracker.EndSession(failed)

	if failed && o.cfg.Budgeted() {
		baseline := o.cfg.TimeoutBudget / 2
		o.applier.StageConnect(baseline)
		if err := o.applier.ApplySession(ctx, baseline); err != nil {
			o.logger.Verbose("restoring baseline session timeouts failed: %v", err)
		}
	}

	o.session = nil
}

// truncateText bounds error text for warnings.
func truncateText(s string) string {
	if len(s) <= retrydb.MaxErrorPreviewLength {
		return s
	}
	return s[:retrydb.MaxErrorPreviewLength] + "..."
}

// Protect runs a value-returning unit of work under retry protection.
// This is the typed-result convention for closures that produce a value;
// work needing several values returns a struct.
func Protect[T any](ctx context.Context, o *Orchestrator, mode retrydb.Mode, work func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := o.RunProtected(ctx, mode, func(ctx context.Context) error {
		v, werr := work(ctx)
		if werr != nil {
			return werr
		}
		result = v
		return nil
	})
	return result, err
}
