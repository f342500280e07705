package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerbook",
		Short:   "Plain-text double-entry bookkeeping",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("repo", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(),
		newTxCommand(),
		newBalancesCommand(),
		newFiscalCommand(),
		newImportCommand(),
		newReportCommand(),
	)

	return rootCmd
}
