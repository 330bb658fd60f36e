package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/internal/keyring"
	"github.com/mrz1836/lexe/internal/output"
	"github.com/mrz1836/lexe/pkg/wallet"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg *config.Config
	Log *zap.Logger
	Fmt *output.Formatter

	// Keyring stores client credentials. Nil means the OS keychain.
	Keyring keyring.Keyring
	// Getenv reads credential variables. Nil means os.Getenv.
	Getenv func(string) string
	// Rand feeds key generation and auth tokens. Nil means crypto/rand.
	Rand io.Reader
	// WalletOptions are appended to every wallet the command builds.
	WalletOptions []wallet.Option
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(c *config.Config, log *zap.Logger, f *output.Formatter) *CommandContext {
	return &CommandContext{
		Cfg: c,
		Log: log,
		Fmt: f,
	}
}

func (c *CommandContext) getenv(key string) string {
	if c.Getenv != nil {
		return c.Getenv(key)
	}
	return os.Getenv(key)
}

func (c *CommandContext) credentialStore() *keyring.CredentialStore {
	return keyring.NewCredentialStore(c.Keyring)
}

type cmdContextKey struct{}

// SetCmdContext attaches the command context to cmd.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the context attached to cmd, or nil.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}

// contextWithTimeout returns a context rooted in the command context that
// expires after the configured command timeout.
func contextWithTimeout(cmd *cobra.Command, cc *CommandContext) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	secs := config.DefaultTimeoutSeconds
	if cc.Cfg != nil && cc.Cfg.Wallet.TimeoutSeconds > 0 {
		secs = cc.Cfg.Wallet.TimeoutSeconds
	}
	return context.WithTimeout(base, time.Duration(secs)*time.Second)
}
