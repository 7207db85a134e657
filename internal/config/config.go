// Package config loads the daemon configuration for miraged: a JSON
// file merged with MIRAGED_*-prefixed environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "miraged.json"

	// DefaultListenAddr is the default debug/metrics listen address.
	DefaultListenAddr = "127.0.0.1:9320"

	// DefaultDataDir is the default storage directory.
	DefaultDataDir = "data"

	// DefaultReconnInterval is the default automatic re-login
	// interval in seconds.
	DefaultReconnInterval = 5
)

// Config is the miraged daemon configuration.
type Config struct {
	// AccountID is the account the daemon signs in as.
	AccountID int64 `json:"account_id" env:"ACCOUNT_ID"`

	// CredentialFile is a file containing the plaintext password; the
	// daemon reads it at startup and never logs it.
	CredentialFile string `json:"credential_file" env:"CREDENTIAL_FILE"`

	// DataDir is the storage directory for device and session
	// artifacts.
	DataDir string `json:"data_dir" env:"DATA_DIR"`

	// ListenAddr is the debug/metrics HTTP listen address.
	ListenAddr string `json:"listen_addr" env:"LISTEN_ADDR"`

	// RemoteAddr overrides the gateway address; empty uses the
	// built-in default.
	RemoteAddr string `json:"remote_addr,omitempty" env:"REMOTE_ADDR"`

	// ReconnInterval is the automatic re-login interval in seconds;
	// zero disables automatic reconnection.
	ReconnInterval int `json:"reconn_interval" env:"RECONN_INTERVAL"`

	// KickoffCounter enables the automatic counter-login after a
	// kickoff race.
	KickoffCounter bool `json:"kickoff_counter,omitempty" env:"KICKOFF_COUNTER"`

	// Platform is the login negotiation profile (1 phone .. 5 pc).
	Platform int `json:"platform,omitempty" env:"PLATFORM"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`
}

// New returns a configuration with defaults applied.
func New() *Config {
	return &Config{
		DataDir:        DefaultDataDir,
		ListenAddr:     DefaultListenAddr,
		ReconnInterval: DefaultReconnInterval,
		Platform:       1,
		LogLevel:       "info",
	}
}

// Load reads path (ConfigFileName when empty), then applies
// MIRAGED_*-prefixed environment overrides. A missing file is not an
// error; environment-only configuration is supported.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = ConfigFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MIRAGED_"}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields needed to start the daemon.
func (c *Config) Validate() error {
	if c.AccountID <= 0 {
		return fmt.Errorf("config: account_id is required")
	}
	if c.CredentialFile == "" {
		return fmt.Errorf("config: credential_file is required")
	}
	if c.ReconnInterval < 0 {
		return fmt.Errorf("config: reconn_interval must not be negative")
	}
	if c.Platform < 1 || c.Platform > 5 {
		return fmt.Errorf("config: platform must be 1-5, got %d", c.Platform)
	}
	return nil
}

// Credential reads the password from CredentialFile, trimming a
// trailing newline.
func (c *Config) Credential() (string, error) {
	data, err := os.ReadFile(c.CredentialFile)
	if err != nil {
		return "", fmt.Errorf("config: read credential: %w", err)
	}
	cred := string(data)
	for len(cred) > 0 && (cred[len(cred)-1] == '\n' || cred[len(cred)-1] == '\r') {
		cred = cred[:len(cred)-1]
	}
	if cred == "" {
		return "", fmt.Errorf("config: credential file %s is empty", c.CredentialFile)
	}
	return cred, nil
}
