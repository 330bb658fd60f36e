package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	provisionAllowGvfs  bool
	provisionBackup     bool
	provisionGoogleCode string
	signupPartner       string
	signupCode          string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Make sure the node runs the latest enclave release",
	Long: `Check the node's provisioned version and provision the latest enclave
release if it is behind. Does nothing when the node is current or when using
client credentials. Requires ROOT_SEED.`,
	Example: `  lexe provision
  lexe provision --backup --allow-gvfs --google-auth-code 4/0Ab...`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register ROOT_SEED as a new Lexe user and provision the node",
	Long: `Sign up the user derived from ROOT_SEED, then provision the latest enclave
release to the new node.`,
	Example: `  lexe signup --env dev
  lexe signup --signup-code ABCD-1234 --backup`,
	Args: cobra.NoArgs,
	RunE: runSignup,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	provisionCmd.GroupID = groupSecurity
	signupCmd.GroupID = groupSecurity

	for _, c := range []*cobra.Command{provisionCmd, signupCmd} {
		c.Flags().BoolVar(&provisionAllowGvfs, "allow-gvfs", false, "allow the node to back up to Google Drive")
		c.Flags().BoolVar(&provisionBackup, "backup", false, "prompt for a password and hand over an encrypted seed backup")
		c.Flags().StringVar(&provisionGoogleCode, "google-auth-code", "", "Google OAuth code for Drive access")
	}
	signupCmd.Flags().StringVar(&signupPartner, "partner", "", "user pk of the referring partner")
	signupCmd.Flags().StringVar(&signupCode, "signup-code", "", "invite code")

	rootCmd.AddCommand(provisionCmd, signupCmd)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// backupPassword prompts for a backup password when --backup is set.
func backupPassword() (*string, error) {
	if !provisionBackup {
		return nil, nil
	}
	pw, err := promptNewPasswordFn()
	if err != nil {
		return nil, err
	}
	defer lexecrypto.Zero(pw)
	s := string(pw)
	return &s, nil
}

func runProvision(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var encryptedSeed []byte
	if seed, ok := s.creds.AsRef().RootSeed(); ok {
		pw, err := backupPassword()
		if err != nil {
			return err
		}
		if pw != nil {
			if encryptedSeed, err = seed.PasswordEncrypt(*pw); err != nil {
				return err
			}
		}
	}

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	err = s.wallet.EnsureProvisioned(ctx, s.creds.AsRef(),
		provisionAllowGvfs || cc.Cfg.Wallet.AllowGvfsAccess, encryptedSeed, optional(provisionGoogleCode))
	if err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), "Node is provisioned and ready.", cc.Fmt.Format())
}

func runSignup(cmd *cobra.Command, _ []string) error {
	var partner *types.UserPk
	if signupPartner != "" {
		pk, err := types.ParseUserPk(signupPartner)
		if err != nil {
			return err
		}
		partner = &pk
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	seed, ok := s.creds.AsRef().RootSeed()
	if !ok {
		return lexeerr.WithSuggestion(lexeerr.ErrMissingCredentials,
			"signup needs ROOT_SEED; client credentials belong to an existing user")
	}

	pw, err := backupPassword()
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	err = s.wallet.SignupAndProvision(ctx, cc.Rand, seed, partner, optional(signupCode),
		provisionAllowGvfs || cc.Cfg.Wallet.AllowGvfsAccess, pw, optional(provisionGoogleCode))
	if err != nil {
		return err
	}
	cc.Log.Info("signed up", zap.Stringer("user_pk", s.wallet.UserConfig().UserPk))
	return output.FormatSuccess(cmd.OutOrStdout(), "Signed up; node is provisioned and ready.", cc.Fmt.Format())
}
