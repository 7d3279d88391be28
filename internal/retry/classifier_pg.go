package retry

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 40 - Transaction Rollback
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"

	// Class 55 - Object Not In Prerequisite State
	pgCodeLockNotAvailable = "55P03"
)

// pgTransientSignatures mirrors the MySQL catalogue for PostgreSQL message
// text, covering the same failure groups.
var pgTransientSignatures = []*regexp.Regexp{
	// Lock contention
	regexp.MustCompile(`deadlock detected`),
	regexp.MustCompile(`could not serialize access`),
	regexp.MustCompile(`canceling statement due to lock timeout`),

	// Connection loss
	regexp.MustCompile(`server closed the connection unexpectedly`),
	regexp.MustCompile(`terminating connection due to administrator command`),
	regexp.MustCompile(`connection reset by peer`),
	regexp.MustCompile(`unexpected EOF`),

	// Initial-connection failure
	regexp.MustCompile(`connection refused`),
	regexp.MustCompile(`too many clients already`),
	regexp.MustCompile(`no such host`),
	regexp.MustCompile(`timeout expired`),

	// Failover in progress / server shutdown
	regexp.MustCompile(`the database system is starting up`),
	regexp.MustCompile(`the database system is shutting down`),
	regexp.MustCompile(`the database system is in recovery mode`),
	regexp.MustCompile(`cannot execute .* in a read-only transaction`),
}

// PostgresClassifier recognizes transient PostgreSQL failures. It is the
// alternate-dialect drop-in for MySQLClassifier: same message-text contract,
// with a structured fast path over SQLSTATE codes when a full error value
// is available.
type PostgresClassifier struct{}

// NewPostgresClassifier creates a new PostgreSQL error classifier.
func NewPostgresClassifier() *PostgresClassifier {
	return &PostgresClassifier{}
}

// IsRetryable reports whether the message matches a known transient
// signature. Empty and unrecognized messages are not retryable.
func (c *PostgresClassifier) IsRetryable(errText string) bool {
	line := firstLine(errText)
	if line == "" {
		return false
	}
	for _, sig := range pgTransientSignatures {
		if sig.MatchString(line) {
			return true
		}
	}
	return false
}

// IsRetryableError classifies a full error value, checking SQLSTATE codes
// before falling back to message-text matching.
func (c *PostgresClassifier) IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	return c.IsRetryable(err.Error())
}

// isTransientSQLState checks PostgreSQL SQLSTATE codes for transient
// conditions: connection exceptions (08), insufficient resources (53),
// operator intervention (57), serialization/deadlock rollbacks, and lock
// acquisition failures.
func isTransientSQLState(code string) bool {
	if strings.HasPrefix(code, "08") ||
		strings.HasPrefix(code, "53") ||
		strings.HasPrefix(code, "57") {
		return true
	}

	switch code {
	case pgCodeSerializationFailure,
		pgCodeDeadlockDetected,
		pgCodeLockNotAvailable:
		return true
	}

	return false
}
