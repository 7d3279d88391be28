package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrydb/internal/config"
	"github.com/vvka-141/retrydb/internal/db"
	"github.com/vvka-141/retrydb/internal/logging"
	"github.com/vvka-141/retrydb/internal/retry"
	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// dbSession bundles everything a command needs to run retry-protected work:
// the orchestrator, the connection it owns, and the timeout applier used to
// push the initial slice when a budget is configured.
type dbSession struct {
	orch     *retry.Orchestrator
	provider retrydb.ConnectionProvider
	applier  *retry.TimeoutApplier
	logger   retrydb.Logger
	cfg      retrydb.Config
}

// newDBSession resolves configuration and builds the (still disconnected)
// session for a command invocation.
func newDBSession(cmd *cobra.Command) (*dbSession, error) {
	configDir, err := cmd.Flags().GetString("config")
	if err != nil {
		configDir = "."
	}
	verbose := getVerboseFlag(cmd)
	plain, _ := cmd.Flags().GetBool("plain")

	project, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	retryCfg, err := project.RetryConfig()
	if err != nil {
		return nil, err
	}
	connCfg := project.ConnectionConfig()

	var logger retrydb.Logger
	if plain {
		logger = logging.NewConsoleLogger(verbose)
	} else {
		logger = logging.NewTintLogger(os.Stderr, verbose)
	}

	provider, err := db.NewProvider(connCfg, logger)
	if err != nil {
		return nil, err
	}

	classifier, err := classifierForDriver(connCfg.Driver)
	if err != nil {
		return nil, err
	}

	return &dbSession{
		orch:     retry.NewOrchestrator(retryCfg, provider, classifier, logger),
		provider: provider,
		applier:  retry.NewTimeoutApplier(provider, classifier, logger, retryCfg.AggressiveTimeouts),
		logger:   logger,
		cfg:      retryCfg,
	}, nil
}

func classifierForDriver(driver string) (retrydb.ErrorClassifier, error) {
	switch driver {
	case retrydb.DriverMySQL:
		return retry.NewMySQLClassifier(), nil
	case retrydb.DriverPostgres:
		return retry.NewPostgresClassifier(), nil
	default:
		return nil, fmt.Errorf("driver %q: %w", driver, retrydb.ErrUnsupportedDriver)
	}
}

// open establishes the initial connection. With a budget configured, the
// first timeout slice (half the budget) is staged before the dial and pushed
// into session variables right after it.
func (s *dbSession) open(ctx context.Context) error {
	if s.cfg.Budgeted() {
		s.applier.StageConnect(s.cfg.TimeoutBudget / 2)
	}
	if err := s.provider.Connect(ctx); err != nil {
		return err
	}
	if s.cfg.Budgeted() {
		if err := s.applier.ApplySession(ctx, s.cfg.TimeoutBudget/2); err != nil {
			s.provider.Disconnect(ctx)
			return err
		}
	}
	return nil
}

// close tears the connection down, best-effort.
func (s *dbSession) close(ctx context.Context) {
	s.provider.Disconnect(ctx)
}
