package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var dbDeleteYes bool

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local payment store",
	Long:  `Manage the payment store and wallet metadata kept in the data directory.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var dbDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete this wallet's local data",
	Long: `Delete the local payment store and wallet metadata for the current user
and environment. Nothing on the node is touched; the next command that opens
the wallet starts from an empty store and 'lexe sync' refills it.`,
	Example: `  lexe db delete
  lexe db delete --yes`,
	Args: cobra.NoArgs,
	RunE: runDbDelete,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	dbCmd.GroupID = groupConfig

	dbDeleteCmd.Flags().BoolVar(&dbDeleteYes, "yes", false, "skip the confirmation prompt")
	dbCmd.AddCommand(dbDeleteCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDbDelete(cmd *cobra.Command, _ []string) error {
	if !dbDeleteYes && !promptConfirmFn("Delete all local payment data for this wallet?") {
		return lexeerr.WithSuggestion(lexeerr.ErrInvalidInput, "aborted; pass --yes to skip the prompt")
	}

	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dir := s.wallet.Dir()
	if err := s.wallet.Delete(); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), "Deleted "+dir+".", cc.Fmt.Format())
}
