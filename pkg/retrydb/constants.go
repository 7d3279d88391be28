package retrydb

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Operation completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Failed to connect to database
	ExitAttemptsExhausted = 12 // Retry gave up after reaching the attempt ceiling
	ExitBudgetExhausted   = 13 // Retry gave up after the time budget ran out
)

const (
	// DefaultMaxAttempts is the default ceiling on attempts before a retry
	// session gives up.
	DefaultMaxAttempts = 8

	// MinTimeoutSlice is the smallest per-attempt timeout slice ever pushed
	// to the server. Slices below this cause timeout thrashing where the
	// server kills attempts faster than they can make progress.
	MinTimeoutSlice = 5 * time.Second

	// UnboundedTimeLeft stands in for "no deadline" when no total time
	// budget is configured. One day is far beyond any sane retry sequence.
	UnboundedTimeLeft = 24 * time.Hour

	// MaxErrorPreviewLength is the maximum number of characters of the
	// underlying error shown in retry warnings. Driver errors can embed
	// whole statements; warnings should not.
	MaxErrorPreviewLength = 200
)

// Supported connection drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Supported authentication methods.
const (
	AuthMethodStandard   = "standard"
	AuthMethodAWSIAM     = "aws_iam"
	AuthMethodAzureEntra = "azure_entra"
)
