package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/internal/output"
	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage client credentials in the OS keyring",
	Long: `Client credentials exported from the Lexe app can be kept in the OS
keyring, one bundle per environment, so they need not sit in the environment
or a .env file. ROOT_SEED and LEXE_CLIENT_CREDENTIALS still take precedence.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialsSaveCmd = &cobra.Command{
	Use:   "save [blob]",
	Short: "Save client credentials for the current environment",
	Long: `Save a base64 client credentials blob. Without an argument the blob is
read from LEXE_CLIENT_CREDENTIALS.`,
	Example: `  lexe credentials save eyJsZXhlX2F1dGhfdG9rZW4i...
  LEXE_CLIENT_CREDENTIALS=eyJ... lexe credentials save --env staging`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCredentialsSave,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove saved client credentials for the current environment",
	Long:  `Remove the client credentials saved in the OS keyring for the current environment.`,
	Example: `  lexe credentials clear
  lexe credentials clear --env dev`,
	Args: cobra.NoArgs,
	RunE: runCredentialsClear,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	credentialsCmd.GroupID = groupSecurity
	credentialsCmd.AddCommand(credentialsSaveCmd, credentialsClearCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func runCredentialsSave(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	env, err := cc.Cfg.WalletEnv()
	if err != nil {
		return err
	}

	blob := cc.getenv(config.EnvClientCredentials)
	if len(args) == 1 {
		blob = args[0]
	}
	if blob == "" {
		return lexeerr.WithSuggestion(lexeerr.ErrMissingCredentials,
			"pass the blob as an argument or set LEXE_CLIENT_CREDENTIALS")
	}

	client, err := credentials.ParseClientCredentials(blob)
	if err != nil {
		return err
	}
	if err := cc.credentialStore().Save(env.ID(), client); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(),
		"Saved client credentials for "+client.UserPk.String()+" ("+env.ID()+").", cc.Fmt.Format())
}

func runCredentialsClear(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	env, err := cc.Cfg.WalletEnv()
	if err != nil {
		return err
	}
	if err := cc.credentialStore().Clear(env.ID()); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), "Cleared client credentials for "+env.ID()+".", cc.Fmt.Format())
}
