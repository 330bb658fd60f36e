package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/output"
	"github.com/mrz1836/lexe/pkg/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	invoiceExpiry      uint32
	invoiceAmount      string
	invoiceDescription string
	invoiceNoQR        bool

	payAmount string
	payNote   string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create and pay Lightning invoices",
	Long:  `Create BOLT11 invoices to receive payments, and pay invoices from others.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice",
	Long: `Create a BOLT11 invoice. Amounts are in satoshis with up to three
decimal places (millisatoshi precision). Leave --amount unset for an
amountless invoice.`,
	Example: `  lexe invoice create
  lexe invoice create --amount 1000 --description "coffee"
  lexe invoice create --amount 0.5 --expiry 600 --no-qr`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var invoicePayCmd = &cobra.Command{
	Use:   "pay <invoice>",
	Short: "Pay an invoice",
	Long: `Pay a BOLT11 invoice. The node quotes the fee first; --amount is only
accepted for invoices that do not carry an amount.`,
	Example: `  lexe invoice pay lnbc10u1p...
  lexe invoice pay lnbc1p... --amount 2500 --note "dinner"`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoicePay,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	invoiceCmd.GroupID = groupWallet

	invoiceCreateCmd.Flags().Uint32Var(&invoiceExpiry, "expiry", 3600, "seconds until the invoice expires")
	invoiceCreateCmd.Flags().StringVar(&invoiceAmount, "amount", "", "amount in sats (empty for amountless)")
	invoiceCreateCmd.Flags().StringVar(&invoiceDescription, "description", "", "description shown to the payer")
	invoiceCreateCmd.Flags().BoolVar(&invoiceNoQR, "no-qr", false, "do not render a QR code")

	invoicePayCmd.Flags().StringVar(&payAmount, "amount", "", "amount in sats, required for amountless invoices")
	invoicePayCmd.Flags().StringVar(&payNote, "note", "", "private note stored with the payment")

	invoiceCmd.AddCommand(invoiceCreateCmd, invoicePayCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func buildCreateInvoiceRequest() (types.CreateInvoiceRequest, error) {
	req := types.CreateInvoiceRequest{ExpirationSecs: invoiceExpiry}
	if invoiceAmount != "" {
		amt, err := types.ParseAmount(invoiceAmount)
		if err != nil {
			return req, err
		}
		req.Amount = &amt
	}
	if invoiceDescription != "" {
		d := invoiceDescription
		req.Description = &d
	}
	return req, req.Validate()
}

func runInvoiceCreate(cmd *cobra.Command, _ []string) error {
	req, err := buildCreateInvoiceRequest()
	if err != nil {
		return err
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	resp, err := s.wallet.CreateInvoice(ctx, req)
	if err != nil {
		return err
	}
	return emit(cmd, cc, resp, func(w io.Writer) error {
		out(w, "Invoice: %s\n", resp.Invoice)
		out(w, "Payment index: %s\n", resp.Index)
		if !invoiceNoQR {
			output.RenderInvoiceQR(w, resp.Invoice)
		}
		return nil
	})
}

func buildPayInvoiceRequest(invoice string) (types.PayInvoiceRequest, error) {
	req := types.PayInvoiceRequest{Invoice: invoice}
	if payAmount != "" {
		amt, err := types.ParseAmount(payAmount)
		if err != nil {
			return req, err
		}
		req.Amount = &amt
	}
	if payNote != "" {
		n := payNote
		req.Note = &n
	}
	return req, req.Validate()
}

func runInvoicePay(cmd *cobra.Command, args []string) error {
	req, err := buildPayInvoiceRequest(args[0])
	if err != nil {
		return err
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	resp, err := s.wallet.PayInvoice(ctx, req)
	if err != nil {
		return err
	}
	return emit(cmd, cc, resp, func(w io.Writer) error {
		out(w, "Payment sent; index %s. Run 'lexe sync' to track its status.\n", resp.Index)
		return nil
	})
}
