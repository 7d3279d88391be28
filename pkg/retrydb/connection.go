package retrydb

import (
	"context"
	"time"
)

// ConnectTimeouts is the pre-connect timeout layer: driver-level settings
// consulted only when a new physical connection is opened. A zero field
// leaves the driver's static default in force.
type ConnectTimeouts struct {
	// Connect bounds connection establishment (dial plus handshake).
	Connect time.Duration

	// Write bounds individual writes on the wire.
	Write time.Duration

	// Read bounds individual reads on the wire. Only set under
	// Config.AggressiveTimeouts: a slow legitimate query looks exactly
	// like a dead server to a read deadline.
	Read time.Duration
}

// ConnectionProvider abstracts the single logical database connection the
// retry engine protects. Implementations own connection establishment
// mechanics; the orchestrator owns when to disconnect and reconnect.
//
// Native driver auto-reconnect must never be enabled by an implementation:
// reconnection is fully controlled by the orchestrator, and a driver racing
// it corrupts the retry accounting.
//
// Implementations are NOT safe for concurrent use. The connection is
// logically owned by a single in-flight retry session for its entire
// duration; callers must serialize access.
type ConnectionProvider interface {
	// IsConnected reports whether a live connection handle exists.
	IsConnected() bool

	// Connect establishes a new physical connection, honoring the most
	// recently staged ConnectTimeouts.
	Connect(ctx context.Context) error

	// Disconnect tears down the current connection, best-effort.
	// Errors during teardown are discarded; there is nothing useful a
	// caller can do with a failure to close an already-suspect handle.
	Disconnect(ctx context.Context)

	// Exec runs a single statement on the live connection.
	// Returns ErrNotConnected when no connection is established.
	Exec(ctx context.Context, sql string) error

	// StageConnectTimeouts stores timeouts to apply at the next Connect.
	// Never touches a live connection.
	StageConnectTimeouts(t ConnectTimeouts)

	// SessionTimeoutStatements returns the dialect-specific session-scoped
	// statements that bound server-side waits to the given timeout slice.
	// The statements are issued immediately after every successful
	// (re)connection.
	SessionTimeoutStatements(slice time.Duration, aggressive bool) []string
}
