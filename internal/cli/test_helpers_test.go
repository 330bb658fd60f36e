package cli

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/mrz1836/lexe/internal/config"
	"github.com/mrz1836/lexe/internal/output"
	"github.com/mrz1836/lexe/pkg/credentials"
	"github.com/mrz1836/lexe/pkg/logging"
	"github.com/mrz1836/lexe/pkg/types"
	"github.com/mrz1836/lexe/pkg/wallet"
)

// testSeedHex is a fixed ROOT_SEED for tests.
var testSeedHex = strings.Repeat("01", credentials.RootSeedLen) //nolint:gochecknoglobals // test fixture

// fakeNode is an in-memory node behind the wallet.
type fakeNode struct {
	mu       sync.Mutex
	payments map[types.PaymentCreatedIndex]types.BasicPayment
	seq      uint64

	status      types.ProvisionStatus
	provisioned []types.ProvisionRequest
	noteUpdates []types.UpdatePaymentNote
	invoices    []types.CreateInvoiceRequest
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		payments: make(map[types.PaymentCreatedIndex]types.BasicPayment),
		status: types.ProvisionStatus{
			SignedUp:          true,
			LatestVersion:     "0.7.9",
			LatestMeasurement: "a1b2c3",
		},
	}
}

func (f *fakeNode) addPayment(status types.PaymentStatus) types.PaymentCreatedIndex {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addPaymentLocked(status)
}

func (f *fakeNode) addPaymentLocked(status types.PaymentStatus) types.PaymentCreatedIndex {
	f.seq++
	idx := types.PaymentCreatedIndex(f.seq)
	amount := decimal.NewFromInt(int64(1000 * f.seq))
	f.payments[idx] = types.BasicPayment{
		Index:        idx,
		UpdatedIndex: types.PaymentUpdatedIndex{Seq: f.seq},
		ID:           "ln_" + idx.String(),
		Kind:         types.PaymentKindInvoice,
		Direction:    types.PaymentDirectionInbound,
		Amount:       &amount,
		Fees:         decimal.Zero,
		Status:       status,
		CreatedAt:    time.Unix(1_700_000_000+int64(f.seq), 0).UTC(),
	}
	return idx
}

// finalize marks a payment finalized with a fresh updated index.
func (f *fakeNode) finalize(idx types.PaymentCreatedIndex) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p := f.payments[idx]
	p.Status = types.PaymentStatusFinalized
	p.UpdatedIndex = types.PaymentUpdatedIndex{Seq: f.seq}
	f.payments[idx] = p
}

func (f *fakeNode) FetchPayments(_ context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var page []types.BasicPayment
	for _, p := range f.payments {
		if since == nil || p.UpdatedIndex.Seq > since.Seq {
			page = append(page, p)
		}
	}
	sort.Slice(page, func(i, j int) bool { return page[i].UpdatedIndex.Seq < page[j].UpdatedIndex.Seq })
	if len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}

func (f *fakeNode) NodeInfo(context.Context) (*types.NodeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &types.NodeInfo{
		Version:          f.status.ProvisionedVersion,
		Measurement:      f.status.LatestMeasurement,
		NodePk:           "02abc",
		Balance:          decimal.NewFromInt(5000),
		LightningBalance: decimal.NewFromInt(4000),
		OnchainBalance:   decimal.NewFromInt(1000),
		NumChannels:      2,
	}, nil
}

func (f *fakeNode) CreateInvoice(_ context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, req)
	idx := f.addPaymentLocked(types.PaymentStatusPending)
	return &types.CreateInvoiceResponse{Invoice: "lnbcrt1fake", Index: idx}, nil
}

func (f *fakeNode) PayInvoice(context.Context, types.PayInvoiceRequest) (*types.PayInvoiceResponse, error) {
	return &types.PayInvoiceResponse{Index: f.addPayment(types.PaymentStatusPending)}, nil
}

func (f *fakeNode) GetPayment(_ context.Context, req types.GetPaymentRequest) (*types.SdkPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[req.Index]
	if !ok {
		return nil, nil
	}
	return &types.SdkPayment{Index: p.Index, ID: p.ID, Status: p.Status, Note: p.Note}, nil
}

func (f *fakeNode) UpdatePaymentNote(_ context.Context, req types.UpdatePaymentNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteUpdates = append(f.noteUpdates, req)
	return nil
}

func (f *fakeNode) Signup(context.Context, types.SignupRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.SignedUp = true
	return nil
}

func (f *fakeNode) ProvisionStatus(context.Context) (*types.ProvisionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.status
	return &s, nil
}

func (f *fakeNode) Provision(_ context.Context, req types.ProvisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.RootSeed = nil
	f.provisioned = append(f.provisioned, req)
	f.status.ProvisionedVersion = req.Version
	return nil
}

// memKeyring is an in-memory keyring.Keyring.
type memKeyring struct {
	mu      sync.Mutex
	secrets map[string]string
}

func newMemKeyring() *memKeyring {
	return &memKeyring{secrets: make(map[string]string)}
}

func (m *memKeyring) Set(service, user, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[service+"|"+user] = secret
	return nil
}

func (m *memKeyring) Get(service, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[service+"|"+user]
	if !ok {
		return "", gokeyring.ErrNotFound
	}
	return s, nil
}

func (m *memKeyring) Delete(service, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[service+"|"+user]; !ok {
		return gokeyring.ErrNotFound
	}
	delete(m.secrets, service+"|"+user)
	return nil
}

// testEnv wires a CommandContext to a fake node, an in-memory keyring and
// a private data directory.
type testEnv struct {
	cc      *CommandContext
	node    *fakeNode
	keyring *memKeyring
	vars    map[string]string
}

func newTestEnv(t *testing.T, format output.Format) *testEnv {
	t.Helper()

	c := config.Defaults()
	c.Home = t.TempDir()
	c.DataDir = t.TempDir()
	c.Env.DeployEnv = "dev"

	te := &testEnv{
		node:    newFakeNode(),
		keyring: newMemKeyring(),
		vars:    map[string]string{config.EnvRootSeed: testSeedHex},
	}
	te.cc = &CommandContext{
		Cfg:     c,
		Log:     logging.Nop(),
		Fmt:     output.NewFormatter(format, &bytes.Buffer{}),
		Keyring: te.keyring,
		Getenv:  func(k string) string { return te.vars[k] },
	}
	te.cc.WalletOptions = []wallet.Option{wallet.WithBackend(te.node)}
	return te
}

// command returns a throwaway command bound to the context, and its output.
func (te *testEnv) command() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	SetCmdContext(cmd, te.cc)
	return cmd, buf
}

func testClientCredentials(t *testing.T) (*credentials.ClientCredentials, string) {
	t.Helper()
	cc := &credentials.ClientCredentials{
		UserPk:   types.UserPk{0xaa, 0xbb},
		ClientID: uuid.NewString(),
		Token:    "opaque-token",
	}
	blob, err := cc.ToBase64Blob()
	require.NoError(t, err)
	return cc, blob
}

// setFlag sets a package-level flag variable for one test.
func setFlag[T any](t *testing.T, ptr *T, v T) {
	t.Helper()
	orig := *ptr
	*ptr = v
	t.Cleanup(func() { *ptr = orig })
}
