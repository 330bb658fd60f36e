package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify lexe configuration settings stored in ~/.lexe/config.yaml.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.lexe/config.yaml.

An existing configuration file is left untouched unless --force is given.`,
	Example: `  lexe config init
  lexe config init --force`,
	RunE: runConfigInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after environment variables and flags are applied.`,
	Example: `  lexe config show
  lexe config show -o json`,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by its dotted key.

Known keys: ` + strings.Join(configKeyNames(), ", "),
	Example: `  lexe config get env.deploy_env
  lexe config get wallet.sync_page_size`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its dotted key and save the file.

Only the configuration file is changed; environment variables still win.`,
	Example: `  lexe config set env.deploy_env staging
  lexe config set env.gateway_url http://localhost:8080
  lexe config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	configCmd.GroupID = groupConfig

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// configKey is one settable configuration entry.
type configKey struct {
	name string
	get  func(c *config.Config) string
	set  func(c *config.Config, v string) error
}

func stringKey(name string, field func(c *config.Config) *string, allowed ...string) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			if len(allowed) > 0 && !containsFold(allowed, v) {
				return invalidValue(name, v, "one of: "+strings.Join(allowed, ", "))
			}
			if len(allowed) > 0 {
				v = strings.ToLower(v)
			}
			*field(c) = v
			return nil
		},
	}
}

func boolKey(name string, field func(c *config.Config) *bool) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *config.Config, v string) error {
			b, ok := config.ParseBool(v)
			if !ok {
				return invalidValue(name, v, "true or false (yes/no, on/off, 1/0)")
			}
			*field(c) = b
			return nil
		},
	}
}

func intKey(name string, field func(c *config.Config) *int) configKey {
	return configKey{
		name: name,
		get:  func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return invalidValue(name, v, "a positive integer")
			}
			*field(c) = n
			return nil
		},
	}
}

//nolint:gochecknoglobals // static key table
var configKeys = []configKey{
	stringKey("data_dir", func(c *config.Config) *string { return &c.DataDir }),
	stringKey("env.deploy_env", func(c *config.Config) *string { return &c.Env.DeployEnv }, "prod", "staging", "dev"),
	{
		name: "env.gateway_url",
		get:  func(c *config.Config) string { return c.Env.GatewayURL },
		set: func(c *config.Config, v string) error {
			v = strings.TrimRight(config.SanitizeURL(v), "/")
			if w := config.ValidateGatewayURL(v); v != "" && w != "" {
				return invalidValue("env.gateway_url", v, w)
			}
			c.Env.GatewayURL = v
			return nil
		},
	},
	{
		name: "env.use_sgx",
		get: func(c *config.Config) string {
			if c.Env.UseSGX == nil {
				return "default"
			}
			return strconv.FormatBool(*c.Env.UseSGX)
		},
		set: func(c *config.Config, v string) error {
			if strings.EqualFold(v, "default") {
				c.Env.UseSGX = nil
				return nil
			}
			b, ok := config.ParseBool(v)
			if !ok {
				return invalidValue("env.use_sgx", v, "true, false or default")
			}
			c.Env.UseSGX = &b
			return nil
		},
	},
	intKey("wallet.sync_page_size", func(c *config.Config) *int { return &c.Wallet.SyncPageSize }),
	boolKey("wallet.allow_gvfs_access", func(c *config.Config) *bool { return &c.Wallet.AllowGvfsAccess }),
	intKey("wallet.timeout_seconds", func(c *config.Config) *int { return &c.Wallet.TimeoutSeconds }),
	stringKey("output.default_format", func(c *config.Config) *string { return &c.Output.DefaultFormat }, "text", "json", "auto"),
	stringKey("output.color", func(c *config.Config) *string { return &c.Output.Color }, "auto", "always", "never"),
	boolKey("output.verbose", func(c *config.Config) *bool { return &c.Output.Verbose }),
	stringKey("logging.level", func(c *config.Config) *string { return &c.Logging.Level }, "off", "error", "warn", "info", "debug"),
	stringKey("logging.file", func(c *config.Config) *string { return &c.Logging.File }),
}

func configKeyNames() []string {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return names
}

func lookupConfigKey(name string) (configKey, error) {
	for _, k := range configKeys {
		if k.name == strings.ToLower(name) {
			return k, nil
		}
	}
	return configKey{}, lexeerr.WithSuggestion(
		lexeerr.WithDetails(lexeerr.ErrNotFound, map[string]string{"key": name}),
		"known keys: "+strings.Join(configKeyNames(), ", "),
	)
}

func invalidValue(key, value, want string) error {
	return lexeerr.WithSuggestion(
		lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{"key": key, "value": value}),
		"expected "+want,
	)
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// getConfigValue retrieves a value from the config by dotted key.
func getConfigValue(c *config.Config, key string) (string, error) {
	k, err := lookupConfigKey(key)
	if err != nil {
		return "", err
	}
	return k.get(c), nil
}

// setConfigValue updates a value in the config by dotted key.
func setConfigValue(c *config.Config, key, value string) error {
	k, err := lookupConfigKey(key)
	if err != nil {
		return err
	}
	return k.set(c, strings.TrimSpace(value))
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return lexeerr.WithSuggestion(
			lexeerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Cfg.Home
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - env.deploy_env: Lexe deployment (prod/staging/dev)")
	outln(w, "  - data_dir: Where the local payments database lives")
	outln(w, "  - output.default_format: Output format (text/json/auto)")
	outln(w, "  - logging.level: Log level (off/error/debug)")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	return emit(cmd, cc, configView(cc.Cfg), func(w io.Writer) error {
		return displayConfigText(w, cc.Cfg)
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	value, err := getConfigValue(cc.Cfg, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	key, value := args[0], args[1]

	// Start from the file, not the effective config, so overrides from
	// the environment are not persisted.
	configPath := config.Path(cc.Cfg.Home)
	current, err := config.LoadOrDefaults(configPath)
	if err != nil {
		return err
	}
	current.Home = cc.Cfg.Home

	if err := setConfigValue(current, key, value); err != nil {
		return err
	}
	if _, err := current.WalletEnv(); err != nil {
		return err
	}
	if err := config.Save(current, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	got, _ := getConfigValue(current, key)
	out(cmd.OutOrStdout(), "Set %s = %s\n", strings.ToLower(key), got)
	return nil
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, c *config.Config) error {
	outln(w, "Configuration:")
	out(w, "  file: %s\n", config.Path(c.Home))
	outln(w)

	table := output.NewTable("KEY", "VALUE")
	for _, k := range configKeys {
		v := k.get(c)
		if v == "" {
			v = "(not set)"
		}
		table.AddRow(k.name, v)
	}
	if err := table.Render(w); err != nil {
		return err
	}

	dir, _ := filepath.Abs(c.GetDataDir())
	out(w, "\n  wallet data: %s\n", dir)
	return nil
}

func configView(c *config.Config) map[string]string {
	view := make(map[string]string, len(configKeys)+1)
	view["home"] = c.Home
	for _, k := range configKeys {
		view[k.name] = k.get(c)
	}
	return view
}
