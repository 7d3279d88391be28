// Package config loads project configuration from retrydb.yaml and the
// process environment. Credentials never live in the YAML file: the password
// comes from $RETRYDB_PASSWORD, optionally seeded from a .env file next to
// the config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/retrydb/pkg/retrydb"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// PasswordEnvVar is the environment variable consulted for the database
// password.
const PasswordEnvVar = "RETRYDB_PASSWORD"

// ConnectionConfig is the YAML shape of the connection section.
type ConnectionConfig struct {
	Driver        string            `yaml:"driver"`
	Host          string            `yaml:"host"`
	Port          int               `yaml:"port"`
	Username      string            `yaml:"username"`
	Database      string            `yaml:"database"`
	Params        map[string]string `yaml:"params,omitempty"`
	AuthMethod    string            `yaml:"auth_method,omitempty"`
	AWSRegion     string            `yaml:"aws_region,omitempty"`
	AzureTenantID string            `yaml:"azure_tenant_id,omitempty"`
	AzureClientID string            `yaml:"azure_client_id,omitempty"`
}

// RetryConfig is the YAML shape of the retry section. TimeoutBudget is a Go
// duration string ("90s", "5m"); empty means retry on attempts alone.
// Enabled is a pointer so an absent key defaults to on.
type RetryConfig struct {
	MaxAttempts        int    `yaml:"max_attempts,omitempty"`
	TimeoutBudget      string `yaml:"timeout_budget,omitempty"`
	AggressiveTimeouts bool   `yaml:"aggressive_timeouts,omitempty"`
	WarnOnRetry        bool   `yaml:"warn_on_retry,omitempty"`
	Enabled            *bool  `yaml:"enabled,omitempty"`
}

// ProjectConfig is the root of retrydb.yaml.
type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Retry      RetryConfig      `yaml:"retry"`
}

const ConfigFileName = "retrydb.yaml"

// Load reads retrydb.yaml from dir. A .env file in the same directory, when
// present, is folded into the process environment first (existing variables
// win over .env entries).
func Load(dir string) (*ProjectConfig, error) {
	// godotenv.Load never overrides variables already set in the process.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RetryConfig converts the YAML retry section into engine configuration,
// applying defaults for absent keys.
func (c *ProjectConfig) RetryConfig() (retrydb.Config, error) {
	cfg := retrydb.DefaultConfig()

	if c.Retry.MaxAttempts > 0 {
		cfg.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.TimeoutBudget != "" {
		budget, err := time.ParseDuration(c.Retry.TimeoutBudget)
		if err != nil {
			return retrydb.Config{}, fmt.Errorf("%w: timeout_budget: %v", retrydb.ErrInvalidConfig, err)
		}
		cfg.TimeoutBudget = budget
	}
	cfg.AggressiveTimeouts = c.Retry.AggressiveTimeouts
	cfg.WarnOnRetry = c.Retry.WarnOnRetry
	if c.Retry.Enabled != nil {
		cfg.Enabled = *c.Retry.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return retrydb.Config{}, err
	}
	return cfg, nil
}

// ConnectionConfig converts the YAML connection section into the provider
// configuration. The password is taken from $RETRYDB_PASSWORD.
func (c *ProjectConfig) ConnectionConfig() retrydb.ConnectionConfig {
	return retrydb.ConnectionConfig{
		Driver:            c.Connection.Driver,
		Host:              c.Connection.Host,
		Port:              c.Connection.Port,
		Username:          c.Connection.Username,
		Password:          os.Getenv(PasswordEnvVar),
		Database:          c.Connection.Database,
		Params:            c.Connection.Params,
		AuthMethod:        c.Connection.AuthMethod,
		AWSRegion:         c.Connection.AWSRegion,
		AzureTenantID:     c.Connection.AzureTenantID,
		AzureClientID:     c.Connection.AzureClientID,
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}
