package cli

import (
	"io"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new and updated payments into the local store",
	Long: `Fetch payments that changed on the node since the last sync and store them
locally. Pending payments are re-checked until they finalize.`,
	Example: `  lexe sync
  lexe sync -o json`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	syncCmd.GroupID = groupWallet
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	summary, err := s.wallet.SyncPayments(ctx)
	if err != nil {
		return err
	}
	return emit(cmd, cc, summary, func(w io.Writer) error {
		if !summary.AnyChanges() {
			outln(w, "Already up to date.")
			return nil
		}
		out(w, "Synced payments: %d new, %d updated\n", summary.NumNew, summary.NumUpdated)
		return nil
	})
}
