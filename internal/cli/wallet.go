package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/pkg/credentials"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/wallet"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// emit prints v as JSON or through text, following the command's format.
func emit(cmd *cobra.Command, cc *CommandContext, v any, text func(io.Writer) error) error {
	return cc.Fmt.To(cmd.OutOrStdout()).Emit(v, text)
}

// credentialSource names where resolveCredentials found the credentials.
type credentialSource string

const (
	sourceRootSeedEnv credentialSource = "ROOT_SEED"
	sourceClientEnv   credentialSource = "LEXE_CLIENT_CREDENTIALS"
	sourceKeyring     credentialSource = "keyring"
)

// resolveCredentials finds the user's credentials: ROOT_SEED first, then
// LEXE_CLIENT_CREDENTIALS, then client credentials saved in the keyring.
// The caller must call release once done.
func resolveCredentials(cc *CommandContext, env envconfig.WalletEnvConfig) (
	creds credentials.Credentials, source credentialSource, release func(), err error,
) {
	release = func() {}

	if hex := cc.getenv(config.EnvRootSeed); hex != "" {
		seed, err := credentials.ParseRootSeedHex(hex)
		if err != nil {
			return creds, "", release, lexeerr.WithSuggestion(err,
				"ROOT_SEED must be 64 hex characters")
		}
		return credentials.FromRootSeed(seed), sourceRootSeedEnv, seed.Destroy, nil
	}

	if blob := cc.getenv(config.EnvClientCredentials); blob != "" {
		client, err := credentials.ParseClientCredentials(blob)
		if err != nil {
			return creds, "", release, err
		}
		return credentials.FromClientCredentials(client), sourceClientEnv, release, nil
	}

	client, err := cc.credentialStore().Load(env.ID())
	if err != nil {
		cc.Log.Debug("keyring lookup failed", zap.Error(err))
	}
	if client != nil {
		return credentials.FromClientCredentials(client), sourceKeyring, release, nil
	}

	return creds, "", release, lexeerr.WithSuggestion(lexeerr.ErrMissingCredentials,
		"set ROOT_SEED (hex) or LEXE_CLIENT_CREDENTIALS (base64) in the environment or .env, "+
			"or run 'lexe credentials save'")
}

// session is a wallet opened for one command.
type session struct {
	env     envconfig.WalletEnvConfig
	creds   credentials.Credentials
	wallet  *wallet.WithDb
	release func()
}

// Close closes the wallet and wipes the credentials.
func (s *session) Close() {
	if s.wallet != nil {
		_ = s.wallet.Close()
	}
	s.release()
}

func walletOptions(cc *CommandContext) []wallet.Option {
	opts := []wallet.Option{wallet.WithLogger(cc.Log)}
	if cc.Cfg.Wallet.SyncPageSize > 0 {
		opts = append(opts, wallet.WithPageSize(cc.Cfg.Wallet.SyncPageSize))
	}
	return append(opts, cc.WalletOptions...)
}

// openWallet resolves the environment and credentials and loads the wallet
// from the data directory, creating it on first use.
func openWallet(cmd *cobra.Command) (*CommandContext, *session, error) {
	cc := GetCmdContext(cmd)
	env, err := cc.Cfg.WalletEnv()
	if err != nil {
		return nil, nil, err
	}

	creds, source, release, err := resolveCredentials(cc, env)
	if err != nil {
		release()
		return nil, nil, err
	}
	cc.Log.Debug("using credentials", zap.String("source", string(source)))

	w, err := wallet.LoadOrFresh(cc.Rand, env, creds.AsRef(), cc.Cfg.GetDataDir(), walletOptions(cc)...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return cc, &session{env: env, creds: creds, wallet: w, release: release}, nil
}
