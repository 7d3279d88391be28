package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

var execFlags struct {
	statements  []string
	transaction bool
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run SQL statements under retry protection",
	Long: `Run one or more SQL statements inside a retry-protected session.

Without --transaction each statement list execution is treated as independent
statement work. With --transaction the statements run inside a single
BEGIN/COMMIT block that is rolled back and replayed as a whole if a transient
failure strikes mid-flight.

The statements must be safe to execute again from the top: every retry runs
the full list on a fresh connection.`,
	Example: `  retrydb exec --sql "UPDATE accounts SET balance = balance - 10 WHERE id = 1"
  retrydb exec --transaction \
    --sql "UPDATE accounts SET balance = balance - 10 WHERE id = 1" \
    --sql "UPDATE accounts SET balance = balance + 10 WHERE id = 2"`,
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringArrayVar(&execFlags.statements, "sql", nil, "SQL statement to execute (repeatable, runs in order)")
	execCmd.Flags().BoolVar(&execFlags.transaction, "transaction", false, "Run all statements in a single transaction")
	_ = execCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	if len(execFlags.statements) == 0 {
		return fmt.Errorf("at least one --sql statement is required")
	}

	session, err := newDBSession(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := session.open(ctx); err != nil {
		return err
	}
	defer session.close(ctx)

	mode := retrydb.ModeStatement
	if execFlags.transaction {
		mode = retrydb.ModeTransaction
	}

	err = session.orch.RunProtected(ctx, mode, func(ctx context.Context) error {
		return execStatements(ctx, session.provider, execFlags.statements, execFlags.transaction)
	})
	if err != nil {
		return err
	}

	session.logger.Info("executed %d statement(s)", len(execFlags.statements))
	return nil
}

// execStatements runs the statement list, optionally inside one transaction.
// On a mid-transaction failure the rollback is best-effort: the orchestrator
// discards the connection before replaying anyway.
func execStatements(ctx context.Context, provider retrydb.ConnectionProvider, statements []string, transaction bool) error {
	if transaction {
		if err := provider.Exec(ctx, "BEGIN"); err != nil {
			return err
		}
	}

	for _, stmt := range statements {
		if err := provider.Exec(ctx, stmt); err != nil {
			if transaction {
				_ = provider.Exec(ctx, "ROLLBACK")
			}
			return err
		}
	}

	if transaction {
		return provider.Exec(ctx, "COMMIT")
	}
	return nil
}
