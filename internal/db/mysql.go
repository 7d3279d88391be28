package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// MySQLProvider is the MySQL implementation of retrydb.ConnectionProvider.
// It holds exactly one physical connection: the retry engine owns session
// lifecycle, so pooling would only hide which connection the SET SESSION
// statements landed on.
type MySQLProvider struct {
	config retrydb.ConnectionConfig
	logger retrydb.Logger
	tokens TokenProvider // nil for standard auth

	staged retrydb.ConnectTimeouts

	db   *sql.DB
	conn *sql.Conn
}

// NewMySQLProvider creates a disconnected MySQL provider. tokens may be nil;
// when set, a fresh token replaces the password on every dial.
// Panics if logger is nil.
func NewMySQLProvider(config retrydb.ConnectionConfig, logger retrydb.Logger, tokens TokenProvider) *MySQLProvider {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &MySQLProvider{
		config: config,
		logger: logger,
		tokens: tokens,
	}
}

// IsConnected reports whether the held connection handle is still valid.
// The driver's Validator check is a local inspection of the wire state, not
// a server round trip, so it is cheap enough for the hot classification path.
func (p *MySQLProvider) IsConnected() bool {
	if p.conn == nil {
		return false
	}
	err := p.conn.Raw(func(dc any) error {
		if v, ok := dc.(driver.Validator); ok && !v.IsValid() {
			return driver.ErrBadConn
		}
		return nil
	})
	return err == nil
}

// driverConfig builds the dial configuration from the connection settings
// and the currently staged timeouts.
func (p *MySQLProvider) driverConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = p.config.Username
	cfg.Passwd = p.config.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", p.config.Host, p.config.Port)
	cfg.DBName = p.config.Database
	cfg.Timeout = p.staged.Connect
	cfg.WriteTimeout = p.staged.Write
	cfg.ReadTimeout = p.staged.Read

	if len(p.config.Params) > 0 {
		cfg.Params = make(map[string]string, len(p.config.Params))
		for k, v := range p.config.Params {
			cfg.Params[k] = v
		}
	}

	if p.tokens != nil {
		// Cloud tokens arrive in cleartext over the TLS channel.
		cfg.AllowCleartextPasswords = true
		if cfg.TLSConfig == "" {
			cfg.TLSConfig = "preferred"
		}
	}

	return cfg
}

// Connect dials a new physical connection, honoring the staged timeouts.
// With a token provider configured, a fresh token is acquired first so
// reconnects deep into a retry session never present an expired credential.
func (p *MySQLProvider) Connect(ctx context.Context) error {
	if p.conn != nil {
		p.Disconnect(ctx)
	}

	cfg := p.driverConfig()

	if p.tokens != nil {
		token, _, err := p.tokens.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: acquiring token via %s: %w", retrydb.ErrConnectionFailed, p.tokens, err)
		}
		cfg.Passwd = token
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("%w: invalid MySQL configuration: %w", retrydb.ErrConnectionFailed, err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Pinning a dedicated Conn keeps database/sql from transparently
	// swapping in a fresh connection on ErrBadConn; reconnection stays
	// under the retry engine's control.
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return wrapConnectionError(err, p.config.Host, p.config.Port, p.config.Database)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return wrapConnectionError(err, p.config.Host, p.config.Port, p.config.Database)
	}

	p.db = db
	p.conn = conn
	p.logger.Verbose("connected to mysql://%s/%s", cfg.Addr, cfg.DBName)
	return nil
}

// Disconnect tears down the connection, best-effort.
func (p *MySQLProvider) Disconnect(ctx context.Context) {
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	if p.db != nil {
		_ = p.db.Close()
		p.db = nil
	}
}

// Exec runs a single statement on the live connection.
func (p *MySQLProvider) Exec(ctx context.Context, query string) error {
	if p.conn == nil {
		return retrydb.ErrNotConnected
	}
	_, err := p.conn.ExecContext(ctx, query)
	return err
}

// StageConnectTimeouts stores timeouts for the next dial.
func (p *MySQLProvider) StageConnectTimeouts(t retrydb.ConnectTimeouts) {
	p.staged = t
}

// SessionTimeoutStatements returns the MySQL session variables that bound
// server-side waits to the timeout slice. wait_timeout is only touched under
// aggressive mode: it kills idle sessions, which punishes legitimate pauses
// between statements.
func (p *MySQLProvider) SessionTimeoutStatements(slice time.Duration, aggressive bool) []string {
	secs := int64(slice / time.Second)
	stmts := []string{
		fmt.Sprintf("SET SESSION lock_wait_timeout = %d", secs),
		fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", secs),
		fmt.Sprintf("SET SESSION net_read_timeout = %d", secs),
		fmt.Sprintf("SET SESSION net_write_timeout = %d", secs),
	}
	if aggressive {
		stmts = append(stmts, fmt.Sprintf("SET SESSION wait_timeout = %d", secs))
	}
	return stmts
}
