package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database
// authentication. This interface enables testability (mock providers) and
// future extensibility: AWS IAM and Azure Entra ID implement it today, other
// clouds can implement the same interface.
type TokenProvider interface {
	// GetToken acquires a short-lived token for database authentication.
	// The token is used as the password on the next dial.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Must NOT include secrets. Example: "AzureServicePrincipal(tenant=xxx, client=yyy)"
	String() string
}

// AzureOSSRDBMSScope is the OAuth scope for Azure Database for MySQL and
// PostgreSQL flexible servers. Azure AD issues tokens against this resource
// for both open-source database offerings.
const AzureOSSRDBMSScope = "https://ossrdbms-aad.database.windows.net/.default"
