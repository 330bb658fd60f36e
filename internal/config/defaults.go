package config

import "github.com/mrz1836/lexe/pkg/paymentsdb"

// DefaultDataDir is where wallets keep their local data unless told
// otherwise. It is relative to the working directory.
const DefaultDataDir = ".lexe_data"

// DefaultTimeoutSeconds bounds a single CLI command.
const DefaultTimeoutSeconds = 60

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.lexe",
		DataDir: DefaultDataDir,
		Env: EnvConfig{
			DeployEnv: "prod",
		},
		Wallet: WalletConfig{
			SyncPageSize:    paymentsdb.DefaultPageSize,
			AllowGvfsAccess: false,
			TimeoutSeconds:  DefaultTimeoutSeconds,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.lexe/lexe.log",
		},
	}
}
