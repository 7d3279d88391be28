package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity under retry protection",
	Long: `Connect to the configured database and run a trivial statement inside a
retry-protected session. Useful for validating retrydb.yaml and for waiting
out a server restart in deployment scripts.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	session, err := newDBSession(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := session.open(ctx); err != nil {
		return err
	}
	defer session.close(ctx)

	err = session.orch.RunProtected(ctx, retrydb.ModeStatement, func(ctx context.Context) error {
		return session.provider.Exec(ctx, "SELECT 1")
	})
	if err != nil {
		return err
	}

	session.logger.Info("database is reachable")
	return nil
}
