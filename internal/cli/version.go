package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the lexe version, commit, build date and platform.`,
	Example: `  lexe version
  lexe version -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Current()
		return emit(cmd, GetCmdContext(cmd), info, func(w io.Writer) error {
			out(w, "lexe %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.BuildDate)
			out(w, "%s, %s\n", info.Platform, info.GoVersion)
			return nil
		})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	versionCmd.GroupID = groupConfig
	rootCmd.AddCommand(versionCmd)
}
