// Package retry implements the transient-failure retry engine: error
// classification, a time-budgeted exponential backoff schedule, dynamic
// per-attempt timeout application, and the orchestrator state machine that
// ties them together around a single logical database connection.
//
// # Example Usage
//
//	classifier := retry.NewMySQLClassifier()
//	orch := retry.NewOrchestrator(retrydb.DefaultConfig(), provider, classifier, logger)
//
//	err := orch.RunProtected(ctx, retrydb.ModeTransaction, func(ctx context.Context) error {
//	    return runTransactionBody(ctx)
//	})
//
// # Error Classification
//
// The retrydb.ErrorClassifier interface decides which errors are transient
// (retryable) versus fatal. MySQLClassifier and PostgresClassifier match
// the first line of an error's text against a fixed catalogue of known
// transient-failure signatures; alternate dialects can be plugged in
// without touching the orchestrator.
//
// # Backoff and Budget
//
// The BudgetTracker owns timing for one retry session: an exponential
// 2^(n/2)-second schedule, a shrinking total time budget, and the
// per-attempt timeout slice pushed to the server before each reconnect.
//
// # Thread Safety
//
// An Orchestrator owns its connection for the duration of a session and is
// NOT safe for concurrent use. Use one orchestrator (and one logical
// connection) per worker.
package retry
