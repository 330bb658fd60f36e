// Package wallet is the entry point of the SDK. A wallet talks to the user's
// node through the gateway and, when built with a local store, mirrors the
// node's payment history in a PaymentsDb.
//
// The two variants are distinct types. WithDb adds PaymentsDb and
// SyncPayments on top of the operations every Wallet has; WithoutDb has no
// local state at all.
package wallet

import (
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/fileutil"
	"github.com/mrz1836/lexe/internal/gateway"
	"github.com/mrz1836/lexe/internal/metrics"
	"github.com/mrz1836/lexe/pkg/credentials"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/paymentsdb"
	"github.com/mrz1836/lexe/pkg/types"
)

// Backend is everything the wallet needs from the remote side.
// *gateway.Client implements it.
type Backend interface {
	paymentsdb.Fetcher

	NodeInfo(ctx context.Context) (*types.NodeInfo, error)
	CreateInvoice(ctx context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error)
	PayInvoice(ctx context.Context, req types.PayInvoiceRequest) (*types.PayInvoiceResponse, error)
	GetPayment(ctx context.Context, req types.GetPaymentRequest) (*types.SdkPayment, error)
	UpdatePaymentNote(ctx context.Context, req types.UpdatePaymentNote) error

	Signup(ctx context.Context, req types.SignupRequest) error
	ProvisionStatus(ctx context.Context) (*types.ProvisionStatus, error)
	Provision(ctx context.Context, req types.ProvisionRequest) error
}

var _ Backend = (*gateway.Client)(nil)

// Wallet is the set of operations available with or without a local store.
type Wallet interface {
	UserConfig() envconfig.WalletUserConfig

	NodeInfo(ctx context.Context) (*types.NodeInfo, error)
	CreateInvoice(ctx context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error)
	PayInvoice(ctx context.Context, req types.PayInvoiceRequest) (*types.PayInvoiceResponse, error)
	GetPayment(ctx context.Context, req types.GetPaymentRequest) (*types.GetPaymentResponse, error)
	UpdatePaymentNote(ctx context.Context, req types.UpdatePaymentNote) error

	SignupAndProvision(ctx context.Context, rng io.Reader, rootSeed *credentials.RootSeed,
		partner *types.UserPk, signupCode *string, allowGvfsAccess bool,
		backupPassword *string, googleAuthCode *string) error
	EnsureProvisioned(ctx context.Context, creds credentials.Ref, allowGvfsAccess bool,
		encryptedSeed []byte, googleAuthCode *string) error
}

var (
	_ Wallet = (*WithDb)(nil)
	_ Wallet = (*WithoutDb)(nil)
)

// core holds what both variants share. It never holds the root seed.
type core struct {
	user    envconfig.WalletUserConfig
	backend Backend
	logger  *zap.Logger
}

func newCore(rng io.Reader, env envconfig.WalletEnvConfig, creds credentials.Ref, o *options) (*core, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	userPk, err := creds.UserPk()
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		auth, err := gateway.NewAuthenticator(creds, env.ID(), rng)
		if err != nil {
			return nil, err
		}
		backend, err = gateway.NewClient(env, auth, &gateway.ClientOptions{
			HTTPClient: o.httpClient,
			Logger:     o.logger.Named("gateway"),
		})
		if err != nil {
			return nil, err
		}
	}

	return &core{
		user:    envconfig.WalletUserConfig{UserPk: userPk, EnvConfig: env},
		backend: backend,
		logger: o.logger.With(
			zap.String("env", env.ID()),
			zap.Stringer("user_pk", userPk),
		),
	}, nil
}

// UserConfig returns the user and environment this wallet is bound to.
func (c *core) UserConfig() envconfig.WalletUserConfig {
	return c.user
}

// NodeInfo fetches a snapshot of the node.
func (c *core) NodeInfo(ctx context.Context) (*types.NodeInfo, error) {
	return c.backend.NodeInfo(ctx)
}

// CreateInvoice asks the node for a new invoice.
func (c *core) CreateInvoice(ctx context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.backend.CreateInvoice(ctx, req)
}

// PayInvoice pays an invoice.
func (c *core) PayInvoice(ctx context.Context, req types.PayInvoiceRequest) (*types.PayInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.backend.PayInvoice(ctx, req)
}

// GetPayment fetches one payment straight from the node, bypassing any
// local store. Payment is nil when the node has no such payment.
func (c *core) GetPayment(ctx context.Context, req types.GetPaymentRequest) (*types.GetPaymentResponse, error) {
	p, err := c.backend.GetPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	return &types.GetPaymentResponse{Payment: p}, nil
}

// UpdatePaymentNote forwards the note to the node.
func (c *core) UpdatePaymentNote(ctx context.Context, req types.UpdatePaymentNote) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.backend.UpdatePaymentNote(ctx, req)
}

// WithoutDb is a wallet with no local persistence.
type WithoutDb struct {
	*core
}

// NewWithoutDb builds a wallet that keeps nothing on disk.
func NewWithoutDb(rng io.Reader, env envconfig.WalletEnvConfig, creds credentials.Ref, opts ...Option) (*WithoutDb, error) {
	c, err := newCore(rng, env, creds, collectOptions(opts))
	if err != nil {
		return nil, err
	}
	return &WithoutDb{core: c}, nil
}

// WithDb is a wallet backed by a local PaymentsDb.
type WithDb struct {
	*core
	layout layout
	db     *paymentsdb.DB
}

// Fresh creates a new wallet and an empty payments store under dataDir.
// It fails with ErrWalletExists if this user already has one there.
func Fresh(rng io.Reader, env envconfig.WalletEnvConfig, creds credentials.Ref, dataDir string, opts ...Option) (*WithDb, error) {
	o := collectOptions(opts)
	c, err := newCore(rng, env, creds, o)
	if err != nil {
		return nil, err
	}

	l := newLayout(dataDir, c.user)
	if fileutil.Exists(l.metadataPath()) || paymentsdb.Exists(l.paymentsDbDir()) {
		return nil, lexeerr.WithDetails(lexeerr.ErrWalletExists, map[string]string{"dir": l.userDir})
	}

	db, err := paymentsdb.Create(l.paymentsDbDir(), dbOptions(c, o)...)
	if err != nil {
		return nil, err
	}
	if err := l.writeMetadata(c.user); err != nil {
		_ = db.Delete()
		return nil, err
	}

	c.logger.Info("created wallet", zap.String("dir", l.userDir))
	return &WithDb{core: c, layout: l, db: db}, nil
}

// Load opens the wallet stored under dataDir. It returns (nil, nil) when
// there is nothing to load and an error when the stored data is corrupt.
func Load(rng io.Reader, env envconfig.WalletEnvConfig, creds credentials.Ref, dataDir string, opts ...Option) (*WithDb, error) {
	o := collectOptions(opts)
	c, err := newCore(rng, env, creds, o)
	if err != nil {
		return nil, err
	}

	l := newLayout(dataDir, c.user)
	hasMeta := fileutil.Exists(l.metadataPath())
	hasDb := paymentsdb.Exists(l.paymentsDbDir())
	if !hasMeta && !hasDb {
		return nil, nil
	}
	if !hasMeta {
		return nil, lexeerr.WithDetails(lexeerr.ErrStoreCorrupt, map[string]string{
			"file":   l.metadataPath(),
			"reason": "missing",
		})
	}
	if _, err := l.readMetadata(c.user); err != nil {
		return nil, err
	}

	db, err := paymentsdb.Open(l.paymentsDbDir(), dbOptions(c, o)...)
	if errors.Is(err, lexeerr.ErrStoreNotFound) {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreCorrupt, err)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("loaded wallet",
		zap.String("dir", l.userDir),
		zap.Int("payments", db.NumPayments()),
	)
	return &WithDb{core: c, layout: l, db: db}, nil
}

// LoadOrFresh loads the wallet under dataDir, creating it if absent.
func LoadOrFresh(rng io.Reader, env envconfig.WalletEnvConfig, creds credentials.Ref, dataDir string, opts ...Option) (*WithDb, error) {
	w, err := Load(rng, env, creds, dataDir, opts...)
	if err != nil || w != nil {
		return w, err
	}
	return Fresh(rng, env, creds, dataDir, opts...)
}

func dbOptions(c *core, o *options) []paymentsdb.Option {
	return []paymentsdb.Option{
		paymentsdb.WithLogger(c.logger.Named("paymentsdb")),
		paymentsdb.WithPageSize(o.pageSize),
	}
}

// PaymentsDb returns the local payments store.
func (w *WithDb) PaymentsDb() *paymentsdb.DB {
	return w.db
}

// Dir returns the directory holding this wallet's local data.
func (w *WithDb) Dir() string {
	return w.layout.userDir
}

// SyncPayments pulls new and updated payments from the node into the
// local store.
func (w *WithDb) SyncPayments(ctx context.Context) (paymentsdb.SyncSummary, error) {
	summary, err := w.db.Sync(ctx, w.backend)
	metrics.Global.RecordSync(summary.NumNew, summary.NumUpdated, err)
	if err != nil {
		w.logger.Warn("payment sync failed",
			zap.Int("new", summary.NumNew),
			zap.Int("updated", summary.NumUpdated),
			zap.Bool("retryable", lexeerr.IsRetryable(err)),
			zap.Error(err),
		)
		return summary, err
	}
	w.logger.Info("payment sync complete",
		zap.Int("new", summary.NumNew),
		zap.Int("updated", summary.NumUpdated),
	)
	return summary, nil
}

// UpdatePaymentNote updates the note on the node and then in the local
// store. A failed remote call leaves the local store untouched.
func (w *WithDb) UpdatePaymentNote(ctx context.Context, req types.UpdatePaymentNote) error {
	if err := w.core.UpdatePaymentNote(ctx, req); err != nil {
		return err
	}
	err := w.db.UpdatePaymentNote(req)
	if errors.Is(err, lexeerr.ErrPaymentNotFound) {
		// Not synced yet; the next sync brings the note along.
		w.logger.Debug("note updated for unsynced payment", zap.Stringer("index", req.Index))
		return nil
	}
	return err
}

// Close releases the local store.
func (w *WithDb) Close() error {
	return w.db.Close()
}

// Delete removes all local data of this wallet. The wallet keeps working
// for remote operations; local reads return nothing afterwards.
func (w *WithDb) Delete() error {
	if err := w.db.Delete(); err != nil {
		return err
	}
	if err := os.RemoveAll(w.layout.userDir); err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	w.logger.Info("deleted local wallet data", zap.String("dir", w.layout.userDir))
	return nil
}
