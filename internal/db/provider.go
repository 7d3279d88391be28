package db

import (
	"fmt"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// NewProvider is a factory that creates the appropriate ConnectionProvider
// for the config's driver, wiring in a cloud token provider when the auth
// method calls for one.
func NewProvider(config retrydb.ConnectionConfig, logger retrydb.Logger) (retrydb.ConnectionProvider, error) {
	tokens, err := newTokenProvider(config)
	if err != nil {
		return nil, err
	}

	switch config.Driver {
	case retrydb.DriverMySQL:
		return NewMySQLProvider(config, logger, tokens), nil
	case retrydb.DriverPostgres:
		return NewPostgresProvider(config, logger, tokens), nil
	default:
		return nil, fmt.Errorf("driver %q: %w", config.Driver, retrydb.ErrUnsupportedDriver)
	}
}

// newTokenProvider builds the token provider for the config's auth method,
// or nil for standard password authentication.
func newTokenProvider(config retrydb.ConnectionConfig) (TokenProvider, error) {
	switch config.AuthMethod {
	case "", retrydb.AuthMethodStandard:
		return nil, nil

	case retrydb.AuthMethodAWSIAM:
		endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
		tokens, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
		}
		return tokens, nil

	case retrydb.AuthMethodAzureEntra:
		// Explicit service principal credentials win; otherwise fall back to
		// the default credential chain.
		if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
			tokens, err := NewAzureServicePrincipalProvider(
				config.AzureTenantID,
				config.AzureClientID,
				config.AzureClientSecret,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
			}
			return tokens, nil
		}
		tokens, err := NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
		return tokens, nil

	default:
		return nil, fmt.Errorf("auth method %q: %w", config.AuthMethod, retrydb.ErrUnsupportedAuthMethod)
	}
}
