package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// wrapConnectionError wraps raw driver dial errors with actionable guidance.
// Every branch carries the retrydb.ErrConnectionFailed sentinel so exit-code
// mapping and errors.Is checks see a connection failure regardless of which
// guidance fired.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - The database server is not running
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, retrydb.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, retrydb.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "access denied") || strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: authentication failed for database "%s"

Possible causes:
  - Wrong password or expired cloud token
  - Wrong username
  - User does not have access to the database

Original error: %w`, retrydb.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "unknown database") || strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

Create it first, or point the connection at an existing database.

Original error: %w`, retrydb.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") || strings.Contains(errStr, "i/o deadline"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, retrydb.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires TLS but the connection parameters disable it
  - Certificate verification failed
  - Client certificates missing

Original error: %w`, retrydb.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`%w: too many connections to database "%s"

Possible causes:
  - Connection limit reached on the server
  - Stale connections from previous sessions

Original error: %w`, retrydb.ErrConnectionFailed, database, err)

	default:
		return fmt.Errorf("%w: %w", retrydb.ErrConnectionFailed, err)
	}
}
