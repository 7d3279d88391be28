package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

func postgresTestConfig() retrydb.ConnectionConfig {
	return retrydb.ConnectionConfig{
		Driver:   retrydb.DriverPostgres,
		Host:     "db2.example.com",
		Port:     5432,
		Username: "app",
		Password: "secret",
		Database: "orders",
		Params:   map[string]string{"sslmode": "require"},
	}
}

func TestNewPostgresProvider_NilLoggerPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil logger")
		}
	}()
	NewPostgresProvider(postgresTestConfig(), nil, nil)
}

func TestPostgresProvider_ConnString(t *testing.T) {
	p := NewPostgresProvider(postgresTestConfig(), testLogger{}, nil)

	got := p.connString()
	for _, part := range []string{
		"host=db2.example.com",
		"port=5432",
		"dbname=orders",
		"user=app",
		"sslmode=require",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("connString() = %q, missing %q", got, part)
		}
	}
	if strings.Contains(got, "secret") {
		t.Errorf("connString() = %q, password must not appear in the string", got)
	}
}

func TestPostgresProvider_Disconnected(t *testing.T) {
	p := NewPostgresProvider(postgresTestConfig(), testLogger{}, nil)

	if p.IsConnected() {
		t.Error("fresh provider must report disconnected")
	}
	if err := p.Exec(context.Background(), "SELECT 1"); !errors.Is(err, retrydb.ErrNotConnected) {
		t.Errorf("Exec = %v, want ErrNotConnected", err)
	}
	p.Disconnect(context.Background())
}

func TestPostgresProvider_SessionTimeoutStatements(t *testing.T) {
	p := NewPostgresProvider(postgresTestConfig(), testLogger{}, nil)

	stmts := p.SessionTimeoutStatements(20*time.Second, false)
	want := []string{
		"SET SESSION lock_timeout = 20000",
		"SET SESSION statement_timeout = 20000",
	}
	if len(stmts) != len(want) {
		t.Fatalf("statements = %v, want %v", stmts, want)
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, stmts[i], want[i])
		}
	}
}

func TestPostgresProvider_SessionTimeoutStatements_Aggressive(t *testing.T) {
	p := NewPostgresProvider(postgresTestConfig(), testLogger{}, nil)

	stmts := p.SessionTimeoutStatements(20*time.Second, true)
	if len(stmts) != 3 {
		t.Fatalf("statements = %v, want idle_in_transaction appended", stmts)
	}
	if got := stmts[len(stmts)-1]; got != "SET SESSION idle_in_transaction_session_timeout = 20000" {
		t.Errorf("last statement = %q, want idle_in_transaction_session_timeout", got)
	}
}

func TestPostgresProvider_TokenFailureSurfacesAsConnectionError(t *testing.T) {
	tokens := &mockTokenProvider{err: errors.New("expired credentials")}
	p := NewPostgresProvider(postgresTestConfig(), testLogger{}, tokens)

	err := p.Connect(context.Background())
	if !errors.Is(err, retrydb.ErrConnectionFailed) {
		t.Fatalf("Connect = %v, want ErrConnectionFailed", err)
	}
	if p.IsConnected() {
		t.Error("provider must stay disconnected after a token failure")
	}
}
