package wallet

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	"github.com/mrz1836/lexe/internal/version"
	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// SignupAndProvision registers a new user and provisions the latest enclave
// release with rootSeed. When backupPassword is set, an encrypted copy of
// the seed is handed over for the node's remote backup.
//
// rng is unused: age draws the backup's salt and file key from crypto/rand.
func (c *core) SignupAndProvision(
	ctx context.Context,
	_ io.Reader,
	rootSeed *credentials.RootSeed,
	partner *types.UserPk,
	signupCode *string,
	allowGvfsAccess bool,
	backupPassword *string,
	googleAuthCode *string,
) error {
	if rootSeed == nil {
		return lexeerr.ErrMissingCredentials
	}
	if err := c.checkSeedOwner(rootSeed); err != nil {
		return err
	}

	var encryptedSeed []byte
	if backupPassword != nil {
		enc, err := rootSeed.PasswordEncrypt(*backupPassword)
		if err != nil {
			return err
		}
		encryptedSeed = enc
	}

	err := c.backend.Signup(ctx, types.SignupRequest{
		UserPk:     c.user.UserPk,
		Partner:    partner,
		SignupCode: signupCode,
	})
	if err != nil {
		switch lexeerr.KindOf(err) {
		case lexeerr.KindProvisioning, lexeerr.KindCredential:
			return err
		}
		return lexeerr.WithCause(lexeerr.ErrSignupFailed, err)
	}
	c.logger.Info("signed up")

	status, err := c.provisionStatus(ctx)
	if err != nil {
		return err
	}
	return c.provision(ctx, rootSeed, status, allowGvfsAccess, encryptedSeed, googleAuthCode)
}

// EnsureProvisioned makes sure the node runs the latest enclave release,
// provisioning it if needed. It is cheap when nothing needs doing.
//
// Client credentials cannot provision, since that needs the root seed. The
// app that issued them keeps the node provisioned, so the call is a no-op.
func (c *core) EnsureProvisioned(
	ctx context.Context,
	creds credentials.Ref,
	allowGvfsAccess bool,
	encryptedSeed []byte,
	googleAuthCode *string,
) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	rootSeed, ok := creds.RootSeed()
	if !ok {
		c.logger.Debug("skipping provision check for client credentials")
		return nil
	}
	if err := c.checkSeedOwner(rootSeed); err != nil {
		return err
	}

	status, err := c.provisionStatus(ctx)
	if err != nil {
		return err
	}
	if !status.SignedUp {
		return lexeerr.WithSuggestion(lexeerr.ErrNotSignedUp,
			"run 'lexe signup' to register this root seed")
	}
	if version.CompareVersions(status.ProvisionedVersion, status.LatestVersion) >= 0 {
		c.logger.Debug("node already provisioned",
			zap.String("version", status.ProvisionedVersion),
		)
		return nil
	}
	return c.provision(ctx, rootSeed, status, allowGvfsAccess, encryptedSeed, googleAuthCode)
}

func (c *core) checkSeedOwner(rootSeed *credentials.RootSeed) error {
	pk, err := rootSeed.UserPk()
	if err != nil {
		return err
	}
	if pk != c.user.UserPk {
		return lexeerr.WithDetails(lexeerr.ErrInvalidRootSeed, map[string]string{
			"reason": "root seed belongs to a different user",
		})
	}
	return nil
}

func (c *core) provisionStatus(ctx context.Context) (*types.ProvisionStatus, error) {
	status, err := c.backend.ProvisionStatus(ctx)
	if err != nil {
		if lexeerr.KindOf(err) == lexeerr.KindCredential {
			return nil, err
		}
		return nil, lexeerr.WithCause(lexeerr.ErrProvisionFailed, err)
	}
	if status == nil {
		return nil, lexeerr.WithDetails(lexeerr.ErrProvisionFailed, map[string]string{
			"reason": "empty provision status",
		})
	}
	return status, nil
}

// provision sends the seed to the latest enclave release. Failures are
// reported once and never retried here.
func (c *core) provision(
	ctx context.Context,
	rootSeed *credentials.RootSeed,
	status *types.ProvisionStatus,
	allowGvfsAccess bool,
	encryptedSeed []byte,
	googleAuthCode *string,
) error {
	if !version.Valid(status.LatestVersion) {
		return lexeerr.WithDetails(lexeerr.ErrProvisionFailed, map[string]string{
			"reason":         "backend reported no valid latest version",
			"latest_version": status.LatestVersion,
		})
	}

	seed, err := rootSeed.Bytes()
	if err != nil {
		return err
	}
	defer lexecrypto.Zero(seed)

	env := c.user.EnvConfig
	err = c.backend.Provision(ctx, types.ProvisionRequest{
		UserPk:          c.user.UserPk,
		Version:         status.LatestVersion,
		Measurement:     status.LatestMeasurement,
		RootSeed:        seed,
		DeployEnv:       string(env.DeployEnv),
		Network:         string(env.Network),
		AllowGvfsAccess: allowGvfsAccess,
		EncryptedSeed:   encryptedSeed,
		GoogleAuthCode:  googleAuthCode,
	})
	if err != nil {
		if errors.Is(err, lexeerr.ErrProvisionFailed) {
			return err
		}
		return lexeerr.WithCause(lexeerr.ErrProvisionFailed, err)
	}

	c.logger.Info("provisioned node",
		zap.String("version", status.LatestVersion),
		zap.String("previous", status.ProvisionedVersion),
	)
	return nil
}
