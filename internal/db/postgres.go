package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// PostgresProvider is the PostgreSQL implementation of
// retrydb.ConnectionProvider, holding a single pgx connection.
type PostgresProvider struct {
	config retrydb.ConnectionConfig
	logger retrydb.Logger
	tokens TokenProvider // nil for standard auth

	staged retrydb.ConnectTimeouts

	conn *pgx.Conn
}

// NewPostgresProvider creates a disconnected PostgreSQL provider. tokens may
// be nil; when set, a fresh token replaces the password on every dial.
// Panics if logger is nil.
func NewPostgresProvider(config retrydb.ConnectionConfig, logger retrydb.Logger, tokens TokenProvider) *PostgresProvider {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PostgresProvider{
		config: config,
		logger: logger,
		tokens: tokens,
	}
}

// IsConnected reports whether the held connection handle is still open.
func (p *PostgresProvider) IsConnected() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

// connString builds the keyword/value connection string from the connection
// settings. The password is injected separately after parsing so token
// values never pass through string escaping.
func (p *PostgresProvider) connString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d dbname=%s", p.config.Host, p.config.Port, p.config.Database)
	if p.config.Username != "" {
		fmt.Fprintf(&b, " user=%s", p.config.Username)
	}
	for k, v := range p.config.Params {
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

// Connect dials a new physical connection, honoring the staged timeouts.
// pgx exposes only the dial timeout at the driver layer; read-side bounds
// come from the statement_timeout session variable instead.
func (p *PostgresProvider) Connect(ctx context.Context) error {
	if p.conn != nil {
		p.Disconnect(ctx)
	}

	cfg, err := pgx.ParseConfig(p.connString())
	if err != nil {
		return fmt.Errorf("%w: invalid PostgreSQL configuration: %w", retrydb.ErrConnectionFailed, err)
	}
	cfg.ConnectTimeout = p.staged.Connect
	cfg.Password = p.config.Password

	if p.tokens != nil {
		token, _, terr := p.tokens.GetToken(ctx)
		if terr != nil {
			return fmt.Errorf("%w: acquiring token via %s: %w", retrydb.ErrConnectionFailed, p.tokens, terr)
		}
		cfg.Password = token
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return wrapConnectionError(err, p.config.Host, p.config.Port, p.config.Database)
	}

	p.conn = conn
	p.logger.Verbose("connected to postgres://%s:%d/%s", p.config.Host, p.config.Port, p.config.Database)
	return nil
}

// Disconnect tears down the connection, best-effort.
func (p *PostgresProvider) Disconnect(ctx context.Context) {
	if p.conn != nil {
		_ = p.conn.Close(ctx)
		p.conn = nil
	}
}

// Exec runs a single statement on the live connection.
func (p *PostgresProvider) Exec(ctx context.Context, query string) error {
	if p.conn == nil {
		return retrydb.ErrNotConnected
	}
	_, err := p.conn.Exec(ctx, query)
	return err
}

// StageConnectTimeouts stores timeouts for the next dial.
func (p *PostgresProvider) StageConnectTimeouts(t retrydb.ConnectTimeouts) {
	p.staged = t
}

// SessionTimeoutStatements returns the PostgreSQL session settings that
// bound server-side waits to the timeout slice. PostgreSQL takes these in
// milliseconds. idle_in_transaction_session_timeout is only set under
// aggressive mode: it kills transactions that pause between statements,
// which legitimate interactive work does all the time.
func (p *PostgresProvider) SessionTimeoutStatements(slice time.Duration, aggressive bool) []string {
	ms := slice.Milliseconds()
	stmts := []string{
		fmt.Sprintf("SET SESSION lock_timeout = %d", ms),
		fmt.Sprintf("SET SESSION statement_timeout = %d", ms),
	}
	if aggressive {
		stmts = append(stmts, fmt.Sprintf("SET SESSION idle_in_transaction_session_timeout = %d", ms))
	}
	return stmts
}
