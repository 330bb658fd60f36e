package wallet_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lexe/pkg/credentials"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
	"github.com/mrz1836/lexe/pkg/wallet"
)

// fakeBackend is an in-memory node that counts every call.
type fakeBackend struct {
	mu       sync.Mutex
	payments map[types.PaymentCreatedIndex]types.BasicPayment
	seq      uint64

	status       types.ProvisionStatus
	provisioned  []types.ProvisionRequest
	signups      []types.SignupRequest
	noteUpdates  []types.UpdatePaymentNote
	statusCalls  int
	signupErr    error
	provisionErr error
	noteErr      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		payments: make(map[types.PaymentCreatedIndex]types.BasicPayment),
		status: types.ProvisionStatus{
			SignedUp:          true,
			LatestVersion:     "0.7.9",
			LatestMeasurement: "a1b2c3",
		},
	}
}

func (f *fakeBackend) addPayment(status types.PaymentStatus) types.PaymentCreatedIndex {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	idx := types.PaymentCreatedIndex(f.seq)
	f.payments[idx] = types.BasicPayment{
		Index:        idx,
		UpdatedIndex: types.PaymentUpdatedIndex{Seq: f.seq},
		ID:           "ln_" + idx.String(),
		Kind:         types.PaymentKindInvoice,
		Direction:    types.PaymentDirectionInbound,
		Fees:         decimal.Zero,
		Status:       status,
		CreatedAt:    time.Unix(1_700_000_000, 0).UTC(),
	}
	return idx
}

func (f *fakeBackend) FetchPayments(_ context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.BasicPayment
	for _, p := range f.payments {
		if since == nil || p.UpdatedIndex.Seq > since.Seq {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedIndex.Seq < out[j].UpdatedIndex.Seq })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBackend) NodeInfo(context.Context) (*types.NodeInfo, error) {
	return &types.NodeInfo{Version: f.status.ProvisionedVersion, NodePk: "02abc"}, nil
}

func (f *fakeBackend) CreateInvoice(_ context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error) {
	idx := f.addPayment(types.PaymentStatusPending)
	return &types.CreateInvoiceResponse{Invoice: "lnbcrt1fake", Index: idx}, nil
}

func (f *fakeBackend) PayInvoice(context.Context, types.PayInvoiceRequest) (*types.PayInvoiceResponse, error) {
	return &types.PayInvoiceResponse{Index: f.addPayment(types.PaymentStatusPending)}, nil
}

func (f *fakeBackend) GetPayment(_ context.Context, req types.GetPaymentRequest) (*types.SdkPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[req.Index]
	if !ok {
		return nil, nil
	}
	return &types.SdkPayment{Index: p.Index, ID: p.ID, Status: p.Status, Note: p.Note}, nil
}

func (f *fakeBackend) UpdatePaymentNote(_ context.Context, req types.UpdatePaymentNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteUpdates = append(f.noteUpdates, req)
	return f.noteErr
}

func (f *fakeBackend) Signup(_ context.Context, req types.SignupRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, req)
	if f.signupErr != nil {
		return f.signupErr
	}
	f.status.SignedUp = true
	return nil
}

func (f *fakeBackend) ProvisionStatus(context.Context) (*types.ProvisionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	s := f.status
	return &s, nil
}

func (f *fakeBackend) Provision(_ context.Context, req types.ProvisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.RootSeed = append([]byte(nil), req.RootSeed...)
	f.provisioned = append(f.provisioned, req)
	if f.provisionErr != nil {
		return f.provisionErr
	}
	f.status.ProvisionedVersion = req.Version
	return nil
}

func testSeed(t *testing.T, fill byte) *credentials.RootSeed {
	t.Helper()
	b := make([]byte, credentials.RootSeedLen)
	for i := range b {
		b[i] = fill
	}
	seed, err := credentials.RootSeedFromBytes(b)
	require.NoError(t, err)
	t.Cleanup(seed.Destroy)
	return seed
}

func testEnv() envconfig.WalletEnvConfig {
	return envconfig.Dev(false, nil)
}

func TestFreshLoadLifecycle(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	seed := testSeed(t, 1)
	creds := credentials.RootSeedRef(seed)
	backend := newFakeBackend()

	loaded, err := wallet.Load(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	assert.Nil(t, loaded)

	w, err := wallet.Fresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	pk, err := seed.UserPk()
	require.NoError(t, err)
	assert.Equal(t, pk, w.UserConfig().UserPk)
	assert.Equal(t, filepath.Join(dataDir, "dev-regtest-dbg", pk.String()), w.Dir())
	assert.FileExists(t, filepath.Join(w.Dir(), "wallet.json"))
	assert.FileExists(t, filepath.Join(w.Dir(), "payments_db", "payments.sqlite"))

	_, err = wallet.Fresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.ErrorIs(t, err, lexeerr.ErrWalletExists)
	require.NoError(t, w.Close())

	loaded, err = wallet.Load(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NoError(t, loaded.Close())

	again, err := wallet.LoadOrFresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	require.NoError(t, again.Close())

	// Another user gets a separate directory.
	other, err := wallet.LoadOrFresh(nil, testEnv(), credentials.RootSeedRef(testSeed(t, 2)), dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	assert.NotEqual(t, w.Dir(), other.Dir())
	require.NoError(t, other.Close())
}

func TestLoadCorrupt(t *testing.T) {
	t.Parallel()

	corruptions := map[string]func(t *testing.T, dir string){
		"garbage metadata": func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "wallet.json"), []byte("garbage"), 0o600))
		},
		"metadata for another env": func(t *testing.T, dir string) {
			path := filepath.Join(dir, "wallet.json")
			raw, err := os.ReadFile(path) //nolint:gosec // test path
			require.NoError(t, err)
			patched := []byte(strings.Replace(string(raw), `"env_id": "dev-regtest-dbg"`, `"env_id": "prod-mainnet-sgx"`, 1))
			require.NoError(t, os.WriteFile(path, patched, 0o600))
		},
		"missing metadata": func(t *testing.T, dir string) {
			require.NoError(t, os.Remove(filepath.Join(dir, "wallet.json")))
		},
		"garbage payments db": func(t *testing.T, dir string) {
			garbage := []byte(strings.Repeat("x", 4096))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "payments_db", "payments.sqlite"), garbage, 0o600))
		},
		"payments db removed": func(t *testing.T, dir string) {
			require.NoError(t, os.RemoveAll(filepath.Join(dir, "payments_db")))
		},
	}

	for name, corrupt := range corruptions {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dataDir := t.TempDir()
			creds := credentials.RootSeedRef(testSeed(t, 3))

			w, err := wallet.Fresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(newFakeBackend()))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			corrupt(t, w.Dir())

			loaded, err := wallet.Load(nil, testEnv(), creds, dataDir, wallet.WithBackend(newFakeBackend()))
			require.ErrorIs(t, err, lexeerr.ErrStoreCorrupt)
			assert.Nil(t, loaded)

			_, err = wallet.LoadOrFresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(newFakeBackend()))
			require.ErrorIs(t, err, lexeerr.ErrStoreCorrupt)
		})
	}
}

func newDbWallet(t *testing.T, backend *fakeBackend) *wallet.WithDb {
	t.Helper()
	w, err := wallet.Fresh(nil, testEnv(), credentials.RootSeedRef(testSeed(t, 4)), t.TempDir(), wallet.WithBackend(backend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSyncPayments(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	for range 3 {
		backend.addPayment(types.PaymentStatusPending)
	}
	w := newDbWallet(t, backend)

	summary, err := w.SyncPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.NumNew)
	assert.Equal(t, 0, summary.NumUpdated)
	assert.Equal(t, 3, w.PaymentsDb().NumPayments())

	summary, err = w.SyncPayments(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.AnyChanges())
}

func TestCreateInvoiceThenSync(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	w := newDbWallet(t, backend)

	description := "Test invoice"
	resp, err := w.CreateInvoice(context.Background(), types.CreateInvoiceRequest{
		ExpirationSecs: 3600,
		Description:    &description,
	})
	require.NoError(t, err)
	assert.Equal(t, "lnbcrt1fake", resp.Invoice)

	_, err = w.SyncPayments(context.Background())
	require.NoError(t, err)
	latest := w.PaymentsDb().GetPaymentByScrollIdx(0)
	require.NotNil(t, latest)
	assert.Equal(t, resp.Index, latest.Index)
}

func TestRequestsValidatedBeforeRemote(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	w := newDbWallet(t, backend)

	_, err := w.CreateInvoice(context.Background(), types.CreateInvoiceRequest{})
	require.ErrorIs(t, err, lexeerr.ErrInvalidInput)

	negative := decimal.NewFromInt(-1)
	_, err = w.PayInvoice(context.Background(), types.PayInvoiceRequest{Invoice: "lnbc1", Amount: &negative})
	require.ErrorIs(t, err, lexeerr.ErrInvalidAmount)

	_, err = w.PayInvoice(context.Background(), types.PayInvoiceRequest{})
	require.ErrorIs(t, err, lexeerr.ErrInvalidInput)
	assert.Empty(t, backend.payments)
}

func TestGetPaymentAbsentIsNotAnError(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	idx := backend.addPayment(types.PaymentStatusFinalized)
	w := newDbWallet(t, backend)

	resp, err := w.GetPayment(context.Background(), types.GetPaymentRequest{Index: idx})
	require.NoError(t, err)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, idx, resp.Payment.Index)

	resp, err = w.GetPayment(context.Background(), types.GetPaymentRequest{Index: 404})
	require.NoError(t, err)
	assert.Nil(t, resp.Payment)
}

func TestUpdatePaymentNote_WithDbWritesThrough(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	idx := backend.addPayment(types.PaymentStatusFinalized)
	w := newDbWallet(t, backend)
	_, err := w.SyncPayments(context.Background())
	require.NoError(t, err)

	note := "dinner"
	require.NoError(t, w.UpdatePaymentNote(context.Background(), types.UpdatePaymentNote{Index: idx, Note: &note}))
	require.Len(t, backend.noteUpdates, 1)

	local := w.PaymentsDb().GetPaymentByCreatedIndex(idx)
	require.NotNil(t, local.Note)
	assert.Equal(t, "dinner", *local.Note)

	// A remote failure leaves the local note untouched.
	backend.noteErr = lexeerr.ErrNetwork
	other := "lunch"
	err = w.UpdatePaymentNote(context.Background(), types.UpdatePaymentNote{Index: idx, Note: &other})
	require.ErrorIs(t, err, lexeerr.ErrNetwork)
	assert.Equal(t, "dinner", *w.PaymentsDb().GetPaymentByCreatedIndex(idx).Note)
}

func TestUpdatePaymentNote_UnsyncedPayment(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	idx := backend.addPayment(types.PaymentStatusFinalized)
	w := newDbWallet(t, backend)

	note := "before sync"
	require.NoError(t, w.UpdatePaymentNote(context.Background(), types.UpdatePaymentNote{Index: idx, Note: &note}))
	assert.Len(t, backend.noteUpdates, 1)
	assert.Equal(t, 0, w.PaymentsDb().NumPayments())
}

func TestUpdatePaymentNote_WithoutDbForwards(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(testSeed(t, 5)), wallet.WithBackend(backend))
	require.NoError(t, err)

	note := "forwarded"
	require.NoError(t, w.UpdatePaymentNote(context.Background(), types.UpdatePaymentNote{Index: 9, Note: &note}))
	require.Len(t, backend.noteUpdates, 1)
	assert.Equal(t, types.PaymentCreatedIndex(9), backend.noteUpdates[0].Index)
	assert.Equal(t, "forwarded", *backend.noteUpdates[0].Note)
}

func TestNewWithoutDb_RequiresCredentials(t *testing.T) {
	t.Parallel()
	_, err := wallet.NewWithoutDb(nil, testEnv(), credentials.Ref{}, wallet.WithBackend(newFakeBackend()))
	require.ErrorIs(t, err, lexeerr.ErrMissingCredentials)

	bad := testEnv()
	bad.Network = envconfig.NetworkMainnet
	_, err = wallet.NewWithoutDb(nil, bad, credentials.RootSeedRef(testSeed(t, 5)), wallet.WithBackend(newFakeBackend()))
	require.ErrorIs(t, err, lexeerr.ErrConfigInvalid)
}

func TestEnsureProvisioned_SecondCallIsNoop(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	seed := testSeed(t, 6)
	w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
	require.NoError(t, err)

	require.NoError(t, w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), true, nil, nil))
	require.Len(t, backend.provisioned, 1)
	req := backend.provisioned[0]
	assert.Equal(t, "0.7.9", req.Version)
	assert.Equal(t, "a1b2c3", req.Measurement)
	assert.Equal(t, "dev", req.DeployEnv)
	assert.Equal(t, "regtest", req.Network)
	assert.True(t, req.AllowGvfsAccess)
	want, err := seed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, req.RootSeed)

	require.NoError(t, w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), true, nil, nil))
	assert.Len(t, backend.provisioned, 1)
	assert.Equal(t, 2, backend.statusCalls)
}

func TestEnsureProvisioned_UpgradesStaleVersion(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.status.ProvisionedVersion = "0.7.8"
	seed := testSeed(t, 6)
	w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
	require.NoError(t, err)

	require.NoError(t, w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), false, []byte("backup"), nil))
	require.Len(t, backend.provisioned, 1)
	assert.Equal(t, []byte("backup"), backend.provisioned[0].EncryptedSeed)
	assert.Equal(t, "0.7.9", backend.status.ProvisionedVersion)
}

func TestEnsureProvisioned_Errors(t *testing.T) {
	t.Parallel()
	seed := testSeed(t, 7)

	t.Run("not signed up", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		backend.status.SignedUp = false
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		err = w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), false, nil, nil)
		require.ErrorIs(t, err, lexeerr.ErrNotSignedUp)
		assert.Empty(t, backend.provisioned)
	})

	t.Run("provision rejected", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		backend.provisionErr = lexeerr.ErrNetwork
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		err = w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), false, nil, nil)
		require.ErrorIs(t, err, lexeerr.ErrProvisionFailed)
		assert.Equal(t, lexeerr.KindProvisioning, lexeerr.KindOf(err))
		assert.False(t, lexeerr.IsRetryable(err))
		assert.Len(t, backend.provisioned, 1)
	})

	t.Run("seed of another user", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		stranger := credentials.RootSeedRef(testSeed(t, 8))
		err = w.EnsureProvisioned(context.Background(), stranger, false, nil, nil)
		require.ErrorIs(t, err, lexeerr.ErrInvalidRootSeed)
		assert.Equal(t, 0, backend.statusCalls)
	})
}

func TestEnsureProvisioned_ClientCredentialsSkipRemote(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	cc := &credentials.ClientCredentials{UserPk: types.UserPk{1, 2, 3}, ClientID: uuid.NewString(), Token: "opaque"}
	creds := credentials.FromClientCredentials(cc)

	w, err := wallet.LoadOrFresh(nil, testEnv(), creds.AsRef(), t.TempDir(), wallet.WithBackend(backend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, cc.UserPk, w.UserConfig().UserPk)

	require.NoError(t, w.EnsureProvisioned(context.Background(), creds.AsRef(), false, nil, nil))
	assert.Equal(t, 0, backend.statusCalls)
	assert.Empty(t, backend.provisioned)
}

func TestSignupAndProvision(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.status.SignedUp = false
	seed := testSeed(t, 9)
	w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
	require.NoError(t, err)

	password := "correct horse battery"
	code := "INVITE"
	require.NoError(t, w.SignupAndProvision(context.Background(), nil, seed, nil, &code, false, &password, nil))

	require.Len(t, backend.signups, 1)
	assert.Equal(t, w.UserConfig().UserPk, backend.signups[0].UserPk)
	assert.Equal(t, "INVITE", *backend.signups[0].SignupCode)

	require.Len(t, backend.provisioned, 1)
	encrypted := backend.provisioned[0].EncryptedSeed
	require.NotEmpty(t, encrypted)
	restored, err := credentials.DecryptRootSeed(encrypted, password)
	require.NoError(t, err)
	t.Cleanup(restored.Destroy)
	restoredPk, err := restored.UserPk()
	require.NoError(t, err)
	assert.Equal(t, w.UserConfig().UserPk, restoredPk)

	// Afterwards the node is current, so startup checks are free.
	require.NoError(t, w.EnsureProvisioned(context.Background(), credentials.RootSeedRef(seed), false, nil, nil))
	assert.Len(t, backend.provisioned, 1)
}

func TestSignupAndProvision_BackupUsesFreshRandomness(t *testing.T) {
	t.Parallel()
	seed := testSeed(t, 11)
	password := "correct horse battery"

	backups := make([][]byte, 2)
	for i := range backups {
		backend := newFakeBackend()
		backend.status.SignedUp = false
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		// The same fixed rng both times; the backups must still differ.
		rng := bytes.NewReader(make([]byte, 1024))
		require.NoError(t, w.SignupAndProvision(context.Background(), rng, seed, nil, nil, false, &password, nil))
		require.Len(t, backend.provisioned, 1)
		backups[i] = backend.provisioned[0].EncryptedSeed
	}

	assert.NotEqual(t, backups[0], backups[1])
	for _, b := range backups {
		restored, err := credentials.DecryptRootSeed(b, password)
		require.NoError(t, err)
		restored.Destroy()
	}
}

func TestSignupAndProvision_Errors(t *testing.T) {
	t.Parallel()
	seed := testSeed(t, 10)

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		short := "short"
		err = w.SignupAndProvision(context.Background(), nil, seed, nil, nil, false, &short, nil)
		require.ErrorIs(t, err, lexeerr.ErrWeakPassword)
		assert.Empty(t, backend.signups)
	})

	t.Run("already signed up", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		backend.signupErr = lexeerr.ErrAlreadySignedUp
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		err = w.SignupAndProvision(context.Background(), nil, seed, nil, nil, false, nil, nil)
		require.ErrorIs(t, err, lexeerr.ErrAlreadySignedUp)
		assert.Empty(t, backend.provisioned)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		backend := newFakeBackend()
		backend.signupErr = lexeerr.ErrRemote
		w, err := wallet.NewWithoutDb(nil, testEnv(), credentials.RootSeedRef(seed), wallet.WithBackend(backend))
		require.NoError(t, err)

		err = w.SignupAndProvision(context.Background(), nil, seed, nil, nil, false, nil, nil)
		require.ErrorIs(t, err, lexeerr.ErrSignupFailed)
		assert.Equal(t, lexeerr.KindProvisioning, lexeerr.KindOf(err))
	})
}

func TestDeleteRemovesLocalData(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.addPayment(types.PaymentStatusPending)
	dataDir := t.TempDir()
	creds := credentials.RootSeedRef(testSeed(t, 11))

	w, err := wallet.Fresh(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	_, err = w.SyncPayments(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.Delete())
	assert.NoDirExists(t, w.Dir())
	assert.Equal(t, 0, w.PaymentsDb().NumPayments())

	loaded, err := wallet.Load(nil, testEnv(), creds, dataDir, wallet.WithBackend(backend))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
