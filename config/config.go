// Package config persists pkghub client settings and the stored
// authentication token to a YAML file in the user's home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file name under the pkghub directory.
const DefaultFileName = "config.yaml"

// Config holds the persisted client settings.
type Config struct {
	// URL is the API endpoint
	URL string `yaml:"url"`

	// Token is the stored authentication token, if any
	Token string `yaml:"token,omitempty"`

	// SSLVerify controls TLS certificate verification
	SSLVerify bool `yaml:"ssl_verify"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		URL:       "https://api.pkghub.io",
		SSLVerify: true,
	}
}

// DefaultPath returns the per-user config file location
// (~/.pkghub/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".pkghub", DefaultFileName), nil
}

// Load reads the configuration from path. A missing file is not an error
// and yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed. The file is written 0600 because it may hold a token.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
