// Package cli implements the lexe command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/internal/metrics"
	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/logging"
)

var (
	// Global flags
	homeDir      string
	dataDir      string
	envName      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *zap.Logger
	formatter *output.Formatter

	enrichHelp sync.Once
)

// Command groups for the root help output.
const (
	groupWallet   = "wallet"
	groupSecurity = "security"
	groupConfig   = "config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lexe",
	Short: "Command-line wallet for a Lexe Lightning node",
	Long: `lexe drives a self-custodial Lightning node hosted by Lexe.

Credentials come from ROOT_SEED (64 hex characters) or LEXE_CLIENT_CREDENTIALS
(base64 blob exported by the Lexe app), read from the environment or a .env
file, or from client credentials saved in the OS keyring.`,
	Example: `  lexe quickstart
  lexe sync
  lexe invoice create --amount 1000 --description "coffee"
  lexe payments list --view pending`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(); err != nil {
			return err
		}
		if GetCmdContext(cmd) == nil {
			SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	enrichHelp.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return lexeerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	// Variables already in the environment win over .env.
	if err := config.LoadDotEnv(".env"); err != nil {
		return lexeerr.WithDetails(lexeerr.Wrap(lexeerr.ErrConfigInvalid, "loading .env"),
			map[string]string{"error": err.Error()})
	}

	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.LoadOrDefaults(config.Path(home))
	if err != nil {
		return err
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	// Command-line flags win over everything.
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if envName != "" {
		cfg.Env.DeployEnv = envName
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	logger, err = cfg.NewLogger()
	if err != nil {
		logger = logging.Nop()
	}
	zap.ReplaceGlobals(logger)

	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), os.Stdout)

	for _, w := range cfg.Warnings {
		output.Warn(os.Stderr, w)
	}
	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		logger.Debug("command stats", zap.Any("metrics", metrics.Global.Snapshot()))
		_ = logger.Sync()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupWallet, Title: "Wallet Operations:"},
		&cobra.Group{ID: groupSecurity, Title: "Security & Access:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "lexe config directory (default: ~/.lexe)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "wallet data directory (default: .lexe_data)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "deployment: prod, staging, dev (default: prod)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
