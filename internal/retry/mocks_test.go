package retry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// fakeProvider is a scriptable ConnectionProvider for state-machine tests.
type fakeProvider struct {
	connected bool

	staged      []retrydb.ConnectTimeouts
	executed    []string
	connects    int
	disconnects int

	// execErr, when set, decides the outcome of each Exec call.
	execErr func(stmt string) error

	// connectErrs is consumed one per Connect call; nil entries succeed.
	connectErrs []error

	// statements overrides the session timeout statement list.
	statements func(slice time.Duration, aggressive bool) []string
}

func (p *fakeProvider) IsConnected() bool { return p.connected }

func (p *fakeProvider) Connect(ctx context.Context) error {
	p.connects++
	if len(p.connectErrs) > 0 {
		err := p.connectErrs[0]
		p.connectErrs = p.connectErrs[1:]
		if err != nil {
			return err
		}
	}
	p.connected = true
	return nil
}

func (p *fakeProvider) Disconnect(ctx context.Context) {
	p.disconnects++
	p.connected = false
}

func (p *fakeProvider) Exec(ctx context.Context, sql string) error {
	if !p.connected {
		return retrydb.ErrNotConnected
	}
	p.executed = append(p.executed, sql)
	if p.execErr != nil {
		return p.execErr(sql)
	}
	return nil
}

func (p *fakeProvider) StageConnectTimeouts(t retrydb.ConnectTimeouts) {
	p.staged = append(p.staged, t)
}

func (p *fakeProvider) SessionTimeoutStatements(slice time.Duration, aggressive bool) []string {
	if p.statements != nil {
		return p.statements(slice, aggressive)
	}
	secs := int64(slice / time.Second)
	stmts := []string{
		fmt.Sprintf("SET SESSION lock_wait_timeout = %d", secs),
		fmt.Sprintf("SET SESSION net_read_timeout = %d", secs),
	}
	if aggressive {
		stmts = append(stmts, fmt.Sprintf("SET SESSION wait_timeout = %d", secs))
	}
	return stmts
}

// recordingLogger captures log output per level.
type recordingLogger struct {
	mu       sync.Mutex
	verbose  []string
	infos    []string
	warnings []string
	errs     []string
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = append(l.verbose, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, fmt.Sprintf(format, args...))
}

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingSleeper records requested sleep durations without waiting, and
// advances the clock so budget arithmetic sees the time pass.
type recordingSleeper struct {
	clock  *fakeClock
	sleeps []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.sleeps = append(s.sleeps, d)
	if s.clock != nil {
		s.clock.Advance(d)
	}
	return nil
}
