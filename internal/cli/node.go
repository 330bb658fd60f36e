package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/pkg/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var nodeInfoCmd = &cobra.Command{
	Use:   "node-info",
	Short: "Show the node's version, balances and channels",
	Long: `Fetch information about the running node: its version, measurement, user pk,
Lightning and on-chain balances, and channel counts.`,
	Example: `  lexe node-info
  lexe node-info -o json`,
	Args: cobra.NoArgs,
	RunE: runNodeInfo,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	nodeInfoCmd.GroupID = groupWallet
	rootCmd.AddCommand(nodeInfoCmd)
}

func runNodeInfo(cmd *cobra.Command, _ []string) error {
	cc, s, err := openWallet(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := contextWithTimeout(cmd, cc)
	defer cancel()

	info, err := s.wallet.NodeInfo(ctx)
	if err != nil {
		return err
	}
	return emit(cmd, cc, info, func(w io.Writer) error {
		writeNodeInfo(w, info)
		return nil
	})
}

func writeNodeInfo(w io.Writer, info *types.NodeInfo) {
	out(w, "Version:           %s\n", info.Version)
	out(w, "Measurement:       %s\n", info.Measurement)
	out(w, "User:              %s\n", info.UserPk)
	out(w, "Node:              %s\n", info.NodePk)
	out(w, "Balance:           %s sats\n", info.Balance)
	out(w, "  Lightning:       %s sats\n", info.LightningBalance)
	out(w, "  On-chain:        %s sats\n", info.OnchainBalance)
	out(w, "Channels:          %d (%d usable)\n", info.NumChannels, info.NumUsableChannels)
}
