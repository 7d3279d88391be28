// Package db provides the concrete connection providers the retry engine
// drives: a MySQL provider built on go-sql-driver/mysql and a PostgreSQL
// provider built on pgx. Both hold a single dedicated session (the retry
// engine owns exactly one connection per session), honor staged connect
// timeouts on the next dial, and translate per-attempt timeout slices into
// the dialect's SET SESSION statements.
//
// Cloud authentication (AWS RDS IAM, Azure Entra ID) is layered in through
// the TokenProvider interface: the acquired token becomes the password for
// the dial that follows, so every reconnect inside a retry session gets a
// fresh token.
package db
