package retry

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
)

// MySQL/MariaDB error numbers for transient conditions.
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/
const (
	// Lock contention
	myCodeLockWaitTimeout = 1205 // Lock wait timeout exceeded
	myCodeDeadlockFound   = 1213 // Deadlock found when trying to get lock

	// Connection loss
	myCodeServerGoneAway    = 2006 // MySQL server has gone away
	myCodeLostConnection    = 2013 // Lost connection to MySQL server during query
	myCodeQueryInterrupted  = 1317 // Query execution was interrupted
	myCodeAbortedConnection = 1152 // Aborted connection

	// Initial-connection failure
	myCodeCantConnect        = 2003 // Can't connect to MySQL server
	myCodeCantConnectSocket  = 2002 // Can't connect through socket
	myCodeTooManyConnections = 1040 // Too many connections
	myCodeBadHandshake       = 1043 // Bad handshake
	myCodeHostBlocked        = 1129 // Host blocked because of many connection errors
	myCodeCantGetHostname    = 1125 // Can't get hostname for your address

	// Packet corruption
	myCodeNetReadError     = 1158 // Got an error reading communication packets
	myCodeNetReadTimeout   = 1159 // Got timeout reading communication packets
	myCodeNetWriteError    = 1160 // Got an error writing communication packets
	myCodeNetWriteTimeout  = 1161 // Got timeout writing communication packets
	myCodeMalformedPacket  = 2027 // Malformed packet
	myCodeNetPacketReadErr = 2008 // Client ran out of memory / read error

	// Failover and shutdown
	myCodeShutdownInProgress = 1053 // Server shutdown in progress
)

var mysqlRetryableCodes = map[uint16]struct{}{
	myCodeLockWaitTimeout:    {},
	myCodeDeadlockFound:      {},
	myCodeServerGoneAway:     {},
	myCodeLostConnection:     {},
	myCodeQueryInterrupted:   {},
	myCodeAbortedConnection:  {},
	myCodeCantConnect:        {},
	myCodeCantConnectSocket:  {},
	myCodeTooManyConnections: {},
	myCodeBadHandshake:       {},
	myCodeHostBlocked:        {},
	myCodeCantGetHostname:    {},
	myCodeNetReadError:       {},
	myCodeNetReadTimeout:     {},
	myCodeNetWriteError:      {},
	myCodeNetWriteTimeout:    {},
	myCodeMalformedPacket:    {},
	myCodeNetPacketReadErr:   {},
	myCodeShutdownInProgress: {},
}

// mysqlTransientSignatures is the fixed catalogue of transient-failure
// message signatures, matched case-sensitively against the first line of an
// error's text. Patterns are unanchored because drivers prefix messages
// (e.g. "Error 1205 (HY000): ...").
var mysqlTransientSignatures = []*regexp.Regexp{
	// Lock contention
	regexp.MustCompile(`Deadlock found when trying to get lock`),
	regexp.MustCompile(`Lock wait timeout exceeded`),
	regexp.MustCompile(`detected deadlock/conflict and aborted the transaction`),

	// Connection loss
	regexp.MustCompile(`server has gone away`),
	regexp.MustCompile(`Lost connection to .* server`),
	regexp.MustCompile(`Query execution was interrupted`),

	// Initial-connection failure
	regexp.MustCompile(`Bad handshake`),
	regexp.MustCompile(`Too many connections`),
	regexp.MustCompile(`Host '.*' is blocked`),
	regexp.MustCompile(`Can't get hostname`),
	regexp.MustCompile(`Can't connect to .* server`),

	// Packet corruption
	regexp.MustCompile(`Got a read error from the connection pipe`),
	regexp.MustCompile(`Got (?:an error|timeout) (?:reading|writing) communication packets`),
	regexp.MustCompile(`Malformed communication packet`),

	// Failover in progress / server shutdown
	regexp.MustCompile(`has not yet prepared node for application use`),
	regexp.MustCompile(`Server shutdown in progress`),
	regexp.MustCompile(`Normal shutdown`),
	regexp.MustCompile(`Shutdown complete`),
}

// MySQLClassifier recognizes transient MySQL/MariaDB failures worth
// retrying: lock contention, dropped connections, connect-phase failures,
// packet corruption, and failover windows.
//
// Classification is message-text based (only the first line is considered),
// with a structured fast path for *mysql.MySQLError numbers when a full
// error value is available.
type MySQLClassifier struct{}

// NewMySQLClassifier creates a new MySQL error classifier.
func NewMySQLClassifier() *MySQLClassifier {
	return &MySQLClassifier{}
}

// IsRetryable reports whether the message matches a known transient
// signature. Empty and unrecognized messages are not retryable.
func (c *MySQLClassifier) IsRetryable(errText string) bool {
	line := firstLine(errText)
	if line == "" {
		return false
	}
	for _, sig := range mysqlTransientSignatures {
		if sig.MatchString(line) {
			return true
		}
	}
	return false
}

// IsRetryableError classifies a full error value. Structured driver errors
// are checked by number before falling back to message-text matching.
func (c *MySQLClassifier) IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if _, ok := mysqlRetryableCodes[mysqlErr.Number]; ok {
			return true
		}
	}

	return c.IsRetryable(err.Error())
}

// firstLine truncates a message to its first line. Later lines are
// diagnostic noise (stack traces, statement previews) that could spuriously
// match a transient signature.
func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
