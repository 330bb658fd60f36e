package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/paymentsdb"
	"github.com/mrz1836/lexe/pkg/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	paymentsView   string
	paymentsLimit  int
	paymentsOffset int
	paymentsRemote bool
	paymentsClear  bool
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Browse the local payment history",
	Long: `Browse payments synced into the local store. Lists are newest first.
Run 'lexe sync' to pull the latest changes from the node.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments, newest first",
	Long:  `List locally synced payments in one of the views, newest first.`,
	Example: `  lexe payments list
  lexe payments list --view pending
  lexe payments list --limit 50 --offset 50`,
	Args: cobra.NoArgs,
	RunE: runPaymentsList,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var paymentsGetCmd = &cobra.Command{
	Use:   "get <index>",
	Short: "Show one payment",
	Long:  `Show a payment by its index, from the local store or straight from the node.`,
	Example: `  lexe payments get 42
  lexe payments get 42 --remote`,
	Args: cobra.ExactArgs(1),
	RunE: runPaymentsGet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var paymentsNoteCmd = &cobra.Command{
	Use:   "note <index> [note]",
	Short: "Set or clear the private note of a payment",
	Long: `Set the private note of a payment on the node and in the local store. The
payment must already be synced locally.`,
	Example: `  lexe payments note 42 "rent"
  lexe payments note 42 --clear`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPaymentsNote,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var paymentsCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count payments by status",
	Long:  `Show how many locally synced payments are pending and finalized.`,
	Example: `  lexe payments counts
  lexe payments counts -o json`,
	Args: cobra.NoArgs,
	RunE: runPaymentsCounts,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	paymentsCmd.GroupID = groupWallet

	paymentsListCmd.Flags().StringVar(&paymentsView, "view", "all",
		"all, pending, pending-not-junk, finalized, finalized-not-junk")
	paymentsListCmd.Flags().IntVar(&paymentsLimit, "limit", 20, "maximum payments to show")
	paymentsListCmd.Flags().IntVar(&paymentsOffset, "offset", 0, "skip this many of the newest payments")

	paymentsGetCmd.Flags().BoolVar(&paymentsRemote, "remote", false, "fetch from the node instead of the local store")

	paymentsNoteCmd.Flags().BoolVar(&paymentsClear, "clear", false, "remove the note")

	paymentsCmd.AddCommand(paymentsListCmd, paymentsGetCmd, paymentsNoteCmd, paymentsCountsCmd)
	rootCmd.AddCommand(paymentsCmd)
}

// scrollView picks the lookup for a named view.
func scrollView(db *paymentsdb.DB, name string) (func(int) *types.BasicPayment, int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "all", "":
		return db.GetPaymentByScrollIdx, db.NumPayments(), nil
	case "pending":
		return db.GetPendingPaymentByScrollIdx, db.NumPending(), nil
	case "pending-not-junk":
		return db.GetPendingNotJunkPaymentByScrollIdx, db.NumPendingNotJunk(), nil
	case "finalized":
		return db.GetFinalizedPaymentByScrollIdx, db.NumFinalized(), nil
	case "finalized-not-junk":
		return db.GetFinalizedNotJunkPaymentByScrollIdx, db.NumFinalizedNotJunk(), nil
	default:
		return nil, 0, lexeerr.WithSuggestion(
			lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{"view": name}),
			"use one of: all, pending, pending-not-junk, finalized, finalized-not-junk",
		)
	}
}

// listPage returns up to limit payments of a view, starting at offset.
func listPage(db *paymentsdb.DB, view string, offset, limit int) ([]*types.BasicPayment, int, error) {
	at, total, err := scrollView(db, view)
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 || limit < 0 {
		return nil, 0, lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"reason": "offset and limit must not be negative",
		})
	}

	var page []*types.BasicPayment
	for i := offset; i < total && len(page) < limit; i++ {
		p := at(i)
		if p == nil {
			break
		}
		page = append(page, p)
	}
	return page, total, nil
}

// paymentList is the JSON form of a list.
type paymentList struct {
	View     string                `json:"view"`
	Total    int                   `json:"total"`
	Offset   int                   `json:"offset"`
	Payments []*types.BasicPayment `json:"payments"`
}

func runPaymentsList(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	page, total, err := listPage(s.wallet.PaymentsDb(), paymentsView, paymentsOffset, paymentsLimit)
	if err != nil {
		return err
	}
	list := paymentList{View: paymentsView, Total: total, Offset: paymentsOffset, Payments: page}
	if list.Payments == nil {
		list.Payments = []*types.BasicPayment{}
	}

	return emit(cmd, cc, list, func(w io.Writer) error {
		if len(page) == 0 {
			outln(w, "No payments.")
			return nil
		}
		tbl := output.NewTable("INDEX", "DIRECTION", "STATUS", "AMOUNT", "CREATED", "NOTE")
		tbl.AlignRight(0, 3)
		tbl.Clip(5, 32)
		for _, p := range page {
			tbl.AddRow(p.Index.String(), string(p.Direction), statusLabel(p),
				amountLabel(p), p.CreatedAt.Format("2006-01-02 15:04"), noteLabel(p.Note))
		}
		if err := tbl.Render(w); err != nil {
			return err
		}
		out(w, "\nShowing %d of %d.\n", len(page), total)
		return nil
	})
}

func statusLabel(p *types.BasicPayment) string {
	s := string(p.Status)
	if p.Junk {
		s += " (junk)"
	}
	return s
}

func amountLabel(p *types.BasicPayment) string {
	if p.Amount == nil {
		return "-"
	}
	return p.Amount.String()
}

func noteLabel(note *string) string {
	if note == nil {
		return ""
	}
	return *note
}

func runPaymentsGet(cmd *cobra.Command, args []string) error {
	idx, err := types.ParsePaymentCreatedIndex(args[0])
	if err != nil {
		return err
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if paymentsRemote {
		ctx, cancel := contextWithTimeout(cmd, cc)
		defer cancel()

		resp, err := s.wallet.GetPayment(ctx, types.GetPaymentRequest{Index: idx})
		if err != nil {
			return err
		}
		if resp.Payment == nil {
			return notFound(idx, "the node has no payment with this index")
		}
		return output.WriteJSON(cmd.OutOrStdout(), resp.Payment)
	}

	p := s.wallet.PaymentsDb().GetPaymentByCreatedIndex(idx)
	if p == nil {
		return notFound(idx, "run 'lexe sync' or pass --remote")
	}
	return output.WriteJSON(cmd.OutOrStdout(), p)
}

func notFound(idx types.PaymentCreatedIndex, suggestion string) error {
	return lexeerr.WithSuggestion(
		lexeerr.WithDetails(lexeerr.ErrNotFound, map[string]string{"index": idx.String()}),
		suggestion,
	)
}

func runPaymentsNote(cmd *cobra.Command, args []string) error {
	idx, err := types.ParsePaymentCreatedIndex(args[0])
	if err != nil {
		return err
	}

	req := types.UpdatePaymentNote{Index: idx}
	switch {
	case paymentsClear && len(args) == 2:
		return lexeerr.WithSuggestion(lexeerr.ErrInvalidInput, "pass a note or --clear, not both")
	case !paymentsClear && len(args) == 1:
		return lexeerr.WithSuggestion(lexeerr.ErrInvalidInput, "pass a note, or --clear to remove it")
	case len(args) == 2:
		note := args[1]
		req.Note = &note
	}
	if err := req.Validate(); err != nil {
		return err
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	if err := s.wallet.UpdatePaymentNote(ctx, req); err != nil {
		return err
	}
	msg := "Note updated."
	if req.Note == nil {
		msg = "Note cleared."
	}
	return output.FormatSuccess(cmd.OutOrStdout(), msg, cc.Fmt.Format())
}

// paymentCounts is the JSON form of the counters.
type paymentCounts struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	PendingNotJunk   int `json:"pending_not_junk"`
	Finalized        int `json:"finalized"`
	FinalizedNotJunk int `json:"finalized_not_junk"`
}

func runPaymentsCounts(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	db := s.wallet.PaymentsDb()
	counts := paymentCounts{
		Total:            db.NumPayments(),
		Pending:          db.NumPending(),
		PendingNotJunk:   db.NumPendingNotJunk(),
		Finalized:        db.NumFinalized(),
		FinalizedNotJunk: db.NumFinalizedNotJunk(),
	}
	return emit(cmd, cc, counts, func(w io.Writer) error {
		tbl := output.NewTable("VIEW", "COUNT")
		tbl.AlignRight(1)
		tbl.AddRow("all", strconv.Itoa(counts.Total))
		tbl.AddRow("pending", strconv.Itoa(counts.Pending))
		tbl.AddRow("pending-not-junk", strconv.Itoa(counts.PendingNotJunk))
		tbl.AddRow("finalized", strconv.Itoa(counts.Finalized))
		tbl.AddRow("finalized-not-junk", strconv.Itoa(counts.FinalizedNotJunk))
		return tbl.Render(w)
	})
}
