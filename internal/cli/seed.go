package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lexe/pkg/credentials"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Work with root seeds",
	Long:  `Generate root seeds for new wallets.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new root seed",
	Long: `Generate a new random root seed and print it as hex (for ROOT_SEED) and
as a 24-word recovery phrase. Anyone with either form controls the wallet;
store it offline and never share it.`,
	Example: `  lexe seed generate
  lexe seed generate -o json`,
	Args: cobra.NoArgs,
	RunE: runSeedGenerate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	seedCmd.GroupID = groupSecurity
	seedCmd.AddCommand(seedGenerateCmd)
	rootCmd.AddCommand(seedCmd)
}

// generatedSeed is the JSON form of a new seed.
type generatedSeed struct {
	UserPk   string `json:"user_pk"`
	RootSeed string `json:"root_seed"`
	Mnemonic string `json:"mnemonic"`
}

func runSeedGenerate(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	seed, err := credentials.GenerateRootSeed(cc.Rand)
	if err != nil {
		return err
	}
	defer seed.Destroy()

	hex, err := seed.Hex()
	if err != nil {
		return err
	}
	mnemonic, err := seed.Mnemonic()
	if err != nil {
		return err
	}
	pk, err := seed.UserPk()
	if err != nil {
		return err
	}

	res := generatedSeed{UserPk: pk.String(), RootSeed: hex, Mnemonic: mnemonic}
	return emit(cmd, cc, res, func(w io.Writer) error {
		out(w, "User pk:   %s\n", res.UserPk)
		out(w, "ROOT_SEED: %s\n", res.RootSeed)
		out(w, "Mnemonic:  %s\n", res.Mnemonic)
		outln(w)
		outln(w, "Write this down and keep it offline. It cannot be recovered.")
		return nil
	})
}
