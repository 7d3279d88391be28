package retry

import (
	"database/sql/driver"
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
)

func TestMySQLClassifier_IsRetryable_TransientCatalogue(t *testing.T) {
	classifier := NewMySQLClassifier()

	tests := []struct {
		name    string
		errText string
	}{
		// Lock contention
		{"deadlock found", "Deadlock found when trying to get lock; try restarting transaction"},
		{"lock wait timeout", "Lock wait timeout exceeded; try restarting transaction"},
		{"wsrep conflict abort", "WSREP detected deadlock/conflict and aborted the transaction. Try restarting the transaction"},

		// Connection loss
		{"server gone away", "MySQL server has gone away"},
		{"lost connection", "Lost connection to MySQL server during query"},
		{"query interrupted", "Query execution was interrupted"},

		// Initial-connection failure
		{"bad handshake", "Bad handshake"},
		{"too many connections", "Too many connections"},
		{"host blocked", "Host 'web1.example.com' is blocked because of many connection errors"},
		{"cannot get hostname", "Can't get hostname for your address"},
		{"cannot connect", "Can't connect to MySQL server on 'db1.example.com' (111)"},
		{"cannot connect socket", "Can't connect to local MySQL server through socket '/run/mysqld/mysqld.sock'"},

		// Packet corruption
		{"read error from pipe", "Got a read error from the connection pipe"},
		{"timeout reading packets", "Got timeout reading communication packets"},
		{"error reading packets", "Got an error reading communication packets"},
		{"timeout writing packets", "Got timeout writing communication packets"},
		{"error writing packets", "Got an error writing communication packets"},
		{"malformed packet", "Malformed communication packet"},

		// Failover / shutdown
		{"wsrep not prepared", "WSREP has not yet prepared node for application use"},
		{"shutdown in progress", "Server shutdown in progress"},
		{"normal shutdown", "Normal shutdown"},
		{"shutdown complete", "Shutdown complete"},

		// Driver-formatted messages keep their signature
		{"driver prefixed deadlock", "Error 1213 (40001): Deadlock found when trying to get lock; try restarting transaction"},
		{"driver prefixed gone away", "Error 2006 (HY000): MySQL server has gone away"},

		// Only the first line matters; trailing diagnostics are kept but
		// must not be needed for the match
		{"stack trace after match", "MySQL server has gone away\n\tat query.go:42\n\tat worker.go:17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !classifier.IsRetryable(tt.errText) {
				t.Errorf("IsRetryable(%q) = false, want true", tt.errText)
			}
		})
	}
}

func TestMySQLClassifier_IsRetryable_FatalAndNoise(t *testing.T) {
	classifier := NewMySQLClassifier()

	tests := []struct {
		name    string
		errText string
	}{
		{"empty string", ""},
		{"duplicate entry", "Duplicate entry '1-1' for key 'PRIMARY'"},
		{"syntax error", "You have an error in your SQL syntax; check the manual"},
		{"unknown column", "Unknown column 'frobnicate' in 'field list'"},
		{"access denied", "Access denied for user 'app'@'10.0.0.1' (using password: YES)"},
		{"unknown database", "Unknown database 'missing'"},
		{"data too long", "Data too long for column 'name' at row 1"},

		// A transient signature on a later line must not leak into
		// classification: only the first line is considered.
		{"transient text after first line", "Duplicate entry '1-1' for key 'PRIMARY'\nMySQL server has gone away"},
		{"transient text in stack trace", "Unknown column 'x' in 'field list'\nLost connection to MySQL server during query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if classifier.IsRetryable(tt.errText) {
				t.Errorf("IsRetryable(%q) = true, want false", tt.errText)
			}
		})
	}
}

func TestMySQLClassifier_IsRetryableError(t *testing.T) {
	classifier := NewMySQLClassifier()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"bad conn sentinel", driver.ErrBadConn, true},
		{
			"structured lock wait timeout",
			&gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded; try restarting transaction"},
			true,
		},
		{
			"structured deadlock",
			&gomysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock; try restarting transaction"},
			true,
		},
		{
			"structured duplicate entry",
			&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-1' for key 'PRIMARY'"},
			false,
		},
		{"plain transient text", errors.New("Lost connection to MySQL server during query"), true},
		{"plain fatal text", errors.New("Unknown database 'missing'"), false},
		{
			"wrapped bad conn",
			errors.Join(errors.New("exec failed"), driver.ErrBadConn),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsRetryableError(tt.err); got != tt.retryable {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"single line", "single line"},
		{"first\nsecond", "first"},
		{"first\r\nsecond", "first"},
		{"\nleading newline", ""},
	}

	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
