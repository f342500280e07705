package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/render"
	"github.com/cleared-dev/ledgerbook/internal/tree"
)

func newBalancesCommand() *cobra.Command {
	var (
		asOf string
		opts render.TreeOptions
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the account tree with rolled-up balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defaultCurrency := tree.WithDefaultCurrency(w.cfg.Workspace.OperatingCurrency)

			var forest *tree.Forest
			if asOf == "" {
				forest, err = tree.FromSources(w.accounts, w.journal, defaultCurrency)
				if err != nil {
					return err
				}
			} else {
				date, err := parseDate(asOf)
				if err != nil {
					return err
				}
				balances, err := w.journal.BalancesAsOf(date)
				if err != nil {
					return err
				}
				forest = tree.Build(w.accounts.All(), tree.BalanceMap(balances), defaultCurrency)
			}

			if err := render.Warnings(cmd.ErrOrStderr(), forest.Warnings); err != nil {
				return err
			}
			return render.Tree(cmd.OutOrStdout(), forest, w.cfg.Formatter(), opts)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balances at the end of this date YYYY-MM-DD")
	cmd.Flags().BoolVar(&opts.HideZero, "hide-zero", false, "hide accounts with a zero balance")
	cmd.Flags().IntVar(&opts.MaxDepth, "depth", 0, "show this many levels (0: all)")
	return cmd
}
