package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

func TestNewProvider_DriverSelection(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		want    string
		wantErr error
	}{
		{name: "mysql", driver: retrydb.DriverMySQL, want: "*db.MySQLProvider"},
		{name: "postgres", driver: retrydb.DriverPostgres, want: "*db.PostgresProvider"},
		{name: "unsupported", driver: "oracle", wantErr: retrydb.ErrUnsupportedDriver},
		{name: "empty", driver: "", wantErr: retrydb.ErrUnsupportedDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mysqlTestConfig()
			cfg.Driver = tt.driver

			provider, err := NewProvider(cfg, testLogger{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProvider() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}

			switch tt.want {
			case "*db.MySQLProvider":
				if _, ok := provider.(*MySQLProvider); !ok {
					t.Errorf("provider = %T, want %s", provider, tt.want)
				}
			case "*db.PostgresProvider":
				if _, ok := provider.(*PostgresProvider); !ok {
					t.Errorf("provider = %T, want %s", provider, tt.want)
				}
			}
		})
	}
}

func TestNewProvider_UnsupportedAuthMethod(t *testing.T) {
	cfg := mysqlTestConfig()
	cfg.AuthMethod = "kerberos"

	_, err := NewProvider(cfg, testLogger{})
	if !errors.Is(err, retrydb.ErrUnsupportedAuthMethod) {
		t.Errorf("NewProvider() error = %v, want ErrUnsupportedAuthMethod", err)
	}
}

func TestNewProvider_AWSIAMRequiresRegion(t *testing.T) {
	cfg := mysqlTestConfig()
	cfg.AuthMethod = retrydb.AuthMethodAWSIAM
	cfg.AWSRegion = ""

	if _, err := NewProvider(cfg, testLogger{}); err == nil {
		t.Error("expected error for AWS IAM auth without a region")
	}
}

func TestNewProvider_AWSIAM(t *testing.T) {
	cfg := mysqlTestConfig()
	cfg.AuthMethod = retrydb.AuthMethodAWSIAM
	cfg.AWSRegion = "us-west-2"

	provider, err := NewProvider(cfg, testLogger{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	mp, ok := provider.(*MySQLProvider)
	if !ok {
		t.Fatalf("provider = %T, want *MySQLProvider", provider)
	}
	if mp.tokens == nil {
		t.Error("AWS IAM auth must wire a token provider")
	}
}

func TestNewProvider_AzureServicePrincipal(t *testing.T) {
	cfg := postgresTestConfig()
	cfg.AuthMethod = retrydb.AuthMethodAzureEntra
	cfg.AzureTenantID = "test-tenant"
	cfg.AzureClientID = "test-client"
	cfg.AzureClientSecret = "test-secret"

	provider, err := NewProvider(cfg, testLogger{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	pp, ok := provider.(*PostgresProvider)
	if !ok {
		t.Fatalf("provider = %T, want *PostgresProvider", provider)
	}
	if _, ok := pp.tokens.(*AzureServicePrincipalProvider); !ok {
		t.Errorf("tokens = %T, want *AzureServicePrincipalProvider", pp.tokens)
	}
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		region   string
		username string
		wantErr  bool
	}{
		{name: "all params", endpoint: "db:3306", region: "us-west-2", username: "app", wantErr: false},
		{name: "missing endpoint", endpoint: "", region: "us-west-2", username: "app", wantErr: true},
		{name: "missing region", endpoint: "db:3306", region: "", username: "app", wantErr: true},
		{name: "missing username", endpoint: "db:3306", region: "us-west-2", username: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAWSIAMTokenProvider(tt.endpoint, tt.region, tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAWSIAMTokenProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAzureServicePrincipalProvider_RequiresAllParams(t *testing.T) {
	tests := []struct {
		name         string
		tenantID     string
		clientID     string
		clientSecret string
		wantErr      bool
	}{
		{name: "all params provided", tenantID: "tenant-id", clientID: "client-id", clientSecret: "client-secret", wantErr: false},
		{name: "missing tenant ID", tenantID: "", clientID: "client-id", clientSecret: "client-secret", wantErr: true},
		{name: "missing client ID", tenantID: "tenant-id", clientID: "", clientSecret: "client-secret", wantErr: true},
		{name: "missing client secret", tenantID: "tenant-id", clientID: "client-id", clientSecret: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAzureServicePrincipalProvider(tt.tenantID, tt.clientID, tt.clientSecret)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAzureServicePrincipalProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenProviderStrings_NoSecrets(t *testing.T) {
	aws, err := NewAWSIAMTokenProvider("db:3306", "us-west-2", "app")
	if err != nil {
		t.Fatalf("NewAWSIAMTokenProvider() error = %v", err)
	}
	if s := aws.String(); s == "" {
		t.Error("AWS provider String() must describe the provider")
	}

	azure, err := NewAzureServicePrincipalProvider("tenant-id", "client-id", "very-secret")
	if err != nil {
		t.Fatalf("NewAzureServicePrincipalProvider() error = %v", err)
	}
	if s := azure.String(); s == "" || strings.Contains(s, "very-secret") {
		t.Errorf("Azure provider String() = %q, must not leak the client secret", s)
	}
}
