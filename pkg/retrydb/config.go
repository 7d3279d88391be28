package retrydb

import (
	"fmt"
	"time"
)

// Config holds the retry engine settings for one Orchestrator.
//
// A Config is an explicit value passed into the orchestrator's constructor.
// It is read for the lifetime of the orchestrator; mutating it while a retry
// session is in flight is unsafe and the resulting behavior is undefined.
type Config struct {
	// MaxAttempts is the hard ceiling on attempts before giving up.
	// Must be positive. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// TimeoutBudget is the total wall-clock budget for one retry sequence,
	// including all sleeps and reconnects. Zero disables the budget: the
	// engine then runs pure exponential backoff with no deadline and no
	// dynamic timeout manipulation.
	TimeoutBudget time.Duration

	// AggressiveTimeouts additionally bounds the idle/read timeout under
	// the budget slice. Riskier: a slow but legitimate query can trip it.
	AggressiveTimeouts bool

	// WarnOnRetry surfaces retried failures through the logger's Warn sink.
	WarnOnRetry bool

	// Enabled is the master switch. When false the orchestrator executes
	// the wrapped work directly, leaving only whatever baseline behavior
	// the data-access layer already has.
	Enabled bool
}

// DefaultConfig returns the engine defaults: 8 attempts, no time budget,
// conservative timeouts, silent retries, engine enabled.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Enabled:     true,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.TimeoutBudget < 0 {
		return fmt.Errorf("%w: timeout budget must not be negative, got %s", ErrInvalidConfig, c.TimeoutBudget)
	}
	return nil
}

// Budgeted reports whether a total time budget is configured.
func (c Config) Budgeted() bool { return c.TimeoutBudget > 0 }
