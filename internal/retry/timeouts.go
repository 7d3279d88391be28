package retry

import (
	"context"
	"time"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// TimeoutApplier pushes a timeout slice into the two layers that bound an
// attempt: driver-level connect defaults consulted at the next physical
// connection, and server-side session variables issued on the live handle.
type TimeoutApplier struct {
	provider   retrydb.ConnectionProvider
	classifier retrydb.ErrorClassifier
	logger     retrydb.Logger
	aggressive bool
}

// NewTimeoutApplier creates a TimeoutApplier.
// Panics if provider, classifier, or logger is nil.
func NewTimeoutApplier(
	provider retrydb.ConnectionProvider,
	classifier retrydb.ErrorClassifier,
	logger retrydb.Logger,
	aggressive bool,
) *TimeoutApplier {
	if provider == nil {
		panic("provider cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TimeoutApplier{
		provider:   provider,
		classifier: classifier,
		logger:     logger,
		aggressive: aggressive,
	}
}

// StageConnect applies the slice to the pre-connect layer: connect and
// write deadlines, plus the read deadline under aggressive mode. Never
// touches a live connection.
func (a *TimeoutApplier) StageConnect(slice time.Duration) {
	t := retrydb.ConnectTimeouts{
		Connect: slice,
		Write:   slice,
	}
	if a.aggressive {
		t.Read = slice
	}
	a.provider.StageConnectTimeouts(t)
}

// ApplySession issues the dialect's session-scoped timeout statements on the
// live connection. No-op when no connection exists yet.
//
// Each statement runs under a best-effort guard: a retryable failure is
// logged and the remaining statements still run, because the next real unit
// of work will surface the same condition through the main retry path. A
// fatal failure propagates immediately.
func (a *TimeoutApplier) ApplySession(ctx context.Context, slice time.Duration) error {
	if !a.provider.IsConnected() {
		return nil
	}

	for _, stmt := range a.provider.SessionTimeoutStatements(slice, a.aggressive) {
		if err := a.provider.Exec(ctx, stmt); err != nil {
			if a.classifier.IsRetryable(firstLine(err.Error())) {
				a.logger.Warn("session timeout setup failed, continuing: %v", err)
				continue
			}
			return err
		}
	}
	return nil
}
