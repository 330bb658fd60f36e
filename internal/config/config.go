// Package config provides configuration management for the lexe CLI.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/lexe/internal/fileutil"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// Config represents the CLI configuration.
type Config struct {
	Version int           `yaml:"version"`
	Home    string        `yaml:"home"`
	DataDir string        `yaml:"data_dir"`
	Env     EnvConfig     `yaml:"env"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`

	// Warnings collects non-fatal problems found while applying overrides.
	Warnings []string `yaml:"-"`
}

// EnvConfig selects the Lexe deployment.
type EnvConfig struct {
	DeployEnv  string `yaml:"deploy_env"`
	GatewayURL string `yaml:"gateway_url,omitempty"`
	UseSGX     *bool  `yaml:"use_sgx,omitempty"`
}

// WalletConfig holds wallet behavior settings.
type WalletConfig struct {
	SyncPageSize    int  `yaml:"sync_page_size"`
	AllowGvfsAccess bool `yaml:"allow_gvfs_access"`
	TimeoutSeconds  int  `yaml:"timeout_seconds"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, lexeerr.WithDetails(
			lexeerr.Wrap(lexeerr.ErrConfigInvalid, "parsing %s", filepath.Base(path)),
			map[string]string{"file": path, "error": err.Error()},
		)
	}

	return cfg, nil
}

// LoadOrDefaults is Load, except a missing file yields the defaults.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPerm); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default lexe home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexe"
	}
	return filepath.Join(home, ".lexe")
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GetHome returns the expanded home directory.
func (c *Config) GetHome() string {
	return ExpandHome(c.Home)
}

// GetDataDir returns the expanded wallet data directory.
func (c *Config) GetDataDir() string {
	return ExpandHome(c.DataDir)
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// WalletEnv resolves the configured deployment and checks it.
func (c *Config) WalletEnv() (envconfig.WalletEnvConfig, error) {
	env, err := envconfig.ParseDeployEnv(c.Env.DeployEnv)
	if err != nil {
		return envconfig.WalletEnvConfig{}, err
	}
	if c.Env.GatewayURL != "" {
		env.GatewayURL = strings.TrimRight(c.Env.GatewayURL, "/")
	}
	if c.Env.UseSGX != nil {
		env.UseSGX = *c.Env.UseSGX
	}
	if err := env.Validate(); err != nil {
		return envconfig.WalletEnvConfig{}, err
	}
	return env, nil
}
