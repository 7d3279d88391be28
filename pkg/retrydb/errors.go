package retrydb

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := orch.RunProtected(ctx, retrydb.ModeTransaction, work)
//	if errors.Is(err, retrydb.ErrAttemptsExhausted) {
//	    // Handle the retry ceiling being reached
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNotConnected indicates an operation required a live connection
	// but none was established.
	ErrNotConnected = errors.New("not connected")

	// ErrAttemptsExhausted indicates a retry session reached its attempt
	// ceiling without succeeding.
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")

	// ErrBudgetExhausted indicates a retry session ran out of its total
	// wall-clock time budget.
	ErrBudgetExhausted = errors.New("retry time budget exhausted")

	// ErrUnsupportedAuthMethod indicates the requested authentication method
	// is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported auth method")

	// ErrUnsupportedDriver indicates the requested connection driver is not
	// supported.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// AttemptsExhaustedError is returned when a retry session hits MaxAttempts.
// It always carries the last underlying error so the root cause is never
// hidden behind the terminal condition.
type AttemptsExhaustedError struct {
	Attempts    int   // attempts actually made
	MaxAttempts int   // configured ceiling
	LastErr     error // error from the final failed attempt
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts (max %d): %v",
		e.Attempts, e.MaxAttempts, e.LastErr)
}

func (e *AttemptsExhaustedError) Unwrap() error { return e.LastErr }

// Is reports a match for the ErrAttemptsExhausted sentinel.
func (e *AttemptsExhaustedError) Is(target error) bool {
	return target == ErrAttemptsExhausted
}

// BudgetExhaustedError is returned when the total time budget for a retry
// session runs out before the next attempt could start.
type BudgetExhaustedError struct {
	Attempts int           // attempts made before the budget ran out
	Budget   time.Duration // configured total budget
	LastErr  error         // error from the final failed attempt
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("time budget of %s exhausted after %d attempts: %v",
		e.Budget, e.Attempts, e.LastErr)
}

func (e *BudgetExhaustedError) Unwrap() error { return e.LastErr }

// Is reports a match for the ErrBudgetExhausted sentinel.
func (e *BudgetExhaustedError) Is(target error) bool {
	return target == ErrBudgetExhausted
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod), errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrAttemptsExhausted):
		return ExitAttemptsExhausted
	case errors.Is(err, ErrBudgetExhausted):
		return ExitBudgetExhausted
	case errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrNotConnected):
		return ExitConnectionError
	}

	errStr := err.Error()

	// cobra surfaces CLI misuse as plain errors; map them to the usage code
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "arg(s), received") {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
