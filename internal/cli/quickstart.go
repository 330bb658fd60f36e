package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/output"
	"github.com/mrz1836/lexe/pkg/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var quickstartCmd = &cobra.Command{
	Use:   "quickstart",
	Short: "Provision, sync and create a test invoice",
	Long: `Walk through the basic wallet flow in one go:

  1. load the wallet from the data directory, creating it on first use
  2. make sure the node runs the latest enclave release
  3. print node info
  4. sync payments into the local store
  5. create a one-hour amountless test invoice
  6. print the most recent synced payment`,
	Example: `  ROOT_SEED=$(lexe seed generate -o json | jq -r .root_seed) lexe quickstart --env dev
  lexe quickstart -o json`,
	Args: cobra.NoArgs,
	RunE: runQuickstart,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	quickstartCmd.GroupID = groupWallet
	rootCmd.AddCommand(quickstartCmd)
}

// quickstartResult is the JSON form of a quickstart run.
type quickstartResult struct {
	NodeInfo      *types.NodeInfo     `json:"node_info"`
	NumNew        int                 `json:"num_new"`
	NumUpdated    int                 `json:"num_updated"`
	Invoice       string              `json:"invoice"`
	LatestPayment *types.BasicPayment `json:"latest_payment"`
}

func runQuickstart(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	w := s.wallet
	err = w.EnsureProvisioned(ctx, s.creds.AsRef(), cc.Cfg.Wallet.AllowGvfsAccess, nil, nil)
	if err != nil {
		return err
	}
	cc.Log.Info("node is provisioned and ready")

	info, err := w.NodeInfo(ctx)
	if err != nil {
		return err
	}

	summary, err := w.SyncPayments(ctx)
	if err != nil {
		return err
	}

	description := "Test invoice from lexe quickstart"
	invoice, err := w.CreateInvoice(ctx, types.CreateInvoiceRequest{
		ExpirationSecs: 3600,
		Description:    &description,
	})
	if err != nil {
		return err
	}
	cc.Log.Info("created invoice", zap.String("invoice", invoice.Invoice))

	res := quickstartResult{
		NodeInfo:      info,
		NumNew:        summary.NumNew,
		NumUpdated:    summary.NumUpdated,
		Invoice:       invoice.Invoice,
		LatestPayment: w.PaymentsDb().GetPaymentByScrollIdx(0),
	}
	if cc.Fmt.IsJSON() {
		return output.WriteJSON(cmd.OutOrStdout(), res)
	}

	o := cmd.OutOrStdout()
	outln(o, "Node info:")
	_ = output.WriteJSON(o, info)
	out(o, "Synced payments: %d new, %d updated\n", summary.NumNew, summary.NumUpdated)
	out(o, "Invoice: %s\n", invoice.Invoice)
	if res.LatestPayment == nil {
		outln(o, "No payments synced yet.")
		return nil
	}
	outln(o, "Latest synced payment:")
	return output.WriteJSON(o, res.LatestPayment)
}
