package retry

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresClassifier_IsRetryable(t *testing.T) {
	classifier := NewPostgresClassifier()

	tests := []struct {
		name      string
		errText   string
		retryable bool
	}{
		{"deadlock detected", "ERROR: deadlock detected (SQLSTATE 40P01)", true},
		{"serialization failure", "ERROR: could not serialize access due to concurrent update", true},
		{"lock timeout", "ERROR: canceling statement due to lock timeout", true},
		{"server closed connection", "server closed the connection unexpectedly", true},
		{"admin shutdown", "FATAL: terminating connection due to administrator command", true},
		{"connection refused", "dial tcp 10.0.0.5:5432: connect: connection refused", true},
		{"too many clients", "FATAL: sorry, too many clients already", true},
		{"starting up", "FATAL: the database system is starting up", true},
		{"recovery mode", "FATAL: the database system is in recovery mode", true},

		{"empty", "", false},
		{"unique violation", "ERROR: duplicate key value violates unique constraint \"users_pkey\"", false},
		{"syntax error", "ERROR: syntax error at or near \"SELEC\"", false},
		{"second line must not leak", "ERROR: syntax error at or near \"SELEC\"\nserver closed the connection unexpectedly", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsRetryable(tt.errText); got != tt.retryable {
				t.Errorf("IsRetryable(%q) = %v, want %v", tt.errText, got, tt.retryable)
			}
		})
	}
}

func TestPostgresClassifier_IsRetryableError(t *testing.T) {
	classifier := NewPostgresClassifier()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"connection failure (08006)", &pgconn.PgError{Code: "08006", Message: "connection failure"}, true},
		{"too many connections (53300)", &pgconn.PgError{Code: "53300", Message: "too many connections"}, true},
		{"cannot connect now (57P03)", &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}, true},
		{"serialization failure (40001)", &pgconn.PgError{Code: "40001", Message: "could not serialize access"}, true},
		{"deadlock detected (40P01)", &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}, true},
		{"lock not available (55P03)", &pgconn.PgError{Code: "55P03", Message: "could not obtain lock"}, true},
		{"syntax error (42601)", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"}, false},
		{"unique violation (23505)", &pgconn.PgError{Code: "23505", Message: "duplicate key value"}, false},
		{"plain transient text", errors.New("server closed the connection unexpectedly"), true},
		{"plain fatal text", errors.New("relation \"missing\" does not exist"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsRetryableError(tt.err); got != tt.retryable {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
