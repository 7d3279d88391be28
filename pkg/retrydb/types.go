package retrydb

import "context"

// Mode declares what the wrapped unit of work represents. The outermost
// transaction boundary is the single top-level call that owns retry
// protection; a statement dispatched outside any transaction gets the same
// protection with the same machinery.
type Mode int

const (
	// ModeStatement marks a single statement dispatched outside any
	// transaction.
	ModeStatement Mode = iota

	// ModeTransaction marks an entire transaction: the outermost boundary,
	// eligible for full retry. Nested work inside it must not be
	// independently retried, because partially-applied side effects inside
	// an open transaction are not safely replayable.
	ModeTransaction
)

// String returns the mode name used in warnings and logs.
func (m Mode) String() string {
	switch m {
	case ModeStatement:
		return "statement"
	case ModeTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// WorkFunc is a unit of database work executed under retry protection.
// It must be safe to invoke multiple times: every invocation after the
// first happens on a freshly established connection.
type WorkFunc func(ctx context.Context) error

// ConnectionConfig describes how to reach a database server.
type ConnectionConfig struct {
	// Driver selects the dialect: DriverMySQL or DriverPostgres.
	Driver string

	Host     string
	Port     int
	Username string
	Password string
	Database string

	// Params are extra driver parameters appended to the connection
	// string (e.g. charset, sslmode).
	Params map[string]string

	// AuthMethod selects credential acquisition: AuthMethodStandard uses
	// Password as-is, the cloud methods fetch a short-lived token and use
	// it as the password.
	AuthMethod string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// AzureTenantID/AzureClientID/AzureClientSecret select a service
	// principal for AuthMethodAzureEntra; when blank the default credential
	// chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}
