package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/render"
)

func newTxListCommand() *cobra.Command {
	var (
		q      journal.Query
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, filtered, sorted and paginated",
		Example: `  ledgerbook tx list --match food --sort payee
  ledgerbook tx list --desc --page 2 --page-size 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if q.Sort, err = journal.ParseSortField(sortBy); err != nil {
				return err
			}

			page, err := journal.Search(w.txns, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if page.TotalCount == 0 {
				newPrinter(out).infof("No matching transactions")
				return nil
			}
			if err := render.Transactions(out, page.Transactions, w.cfg.Formatter()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "\nPage %d of %d (%d transactions)\n", page.Number, page.TotalPages, page.TotalCount)
			return err
		},
	}

	cmd.Flags().StringVar(&q.Match, "match", "", "text to find in the ID, payee, narration or accounts")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "sort by date, payee, narration or accounts")
	cmd.Flags().BoolVar(&q.Descending, "desc", false, "reverse the sort order")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", journal.DefaultPageSize, "transactions per page")
	return cmd
}

func newTxUpdateCommand() *cobra.Command {
	var (
		on        string
		payee     string
		narration string
		postings  []string
		pending   bool
		meta      []string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a recorded transaction",
		Long: `Change a recorded transaction. Only the flags given are replaced;
--posting replaces every posting and --meta replaces all metadata. The
transaction is validated again and keeps its ID.`,
		Example: `  ledgerbook tx update 2025-01-002 -m "Team lunch" -p "Expenses:Food 900" -p "Assets:Cash"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			current, err := w.journal.Get(args[0])
			if err != nil {
				return err
			}

			txn := stripInferred(current)
			flags := cmd.Flags()
			if flags.Changed("date") {
				if txn.Date, err = parseDate(on); err != nil {
					return err
				}
			}
			if flags.Changed("payee") {
				txn.Payee = payee
			}
			if flags.Changed("narration") {
				txn.Narration = narration
			}
			if flags.Changed("pending") {
				txn.Flag = model.FlagCleared
				if pending {
					txn.Flag = model.FlagPending
				}
			}
			if flags.Changed("meta") {
				if txn.Metadata, err = parseMetadata(meta); err != nil {
					return err
				}
			}
			if flags.Changed("posting") {
				txn.Postings = nil
				for _, s := range postings {
					p, err := parsePosting(s, w.cfg.Workspace.OperatingCurrency)
					if err != nil {
						return err
					}
					txn.Postings = append(txn.Postings, p)
				}
			}

			updated, err := w.journal.Update(current.ID, txn)
			if err != nil {
				return err
			}
			if err := w.record(cmd.Context(), auditlog.ActionTxnUpdate, updated.ID, updated.Narration); err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).successf("Updated %s", updated.ID)
			return render.Transactions(cmd.OutOrStdout(), []model.Transaction{updated}, w.cfg.Formatter())
		},
	}

	cmd.Flags().StringVar(&on, "date", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVar(&payee, "payee", "", "new payee")
	cmd.Flags().StringVarP(&narration, "narration", "m", "", "new description")
	cmd.Flags().StringArrayVarP(&postings, "posting", "p", nil, "replacement posting, repeatable")
	cmd.Flags().BoolVar(&pending, "pending", false, "flag as pending (--pending=false clears it)")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "replacement metadata key=value, repeatable")
	return cmd
}

func newTxDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Remove a recorded transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			removed, err := w.journal.Delete(args[0])
			if err != nil {
				return err
			}
			details := fmt.Sprintf("%s %s", removed.Date.Format(time.DateOnly), removed.Narration)
			if err := w.record(cmd.Context(), auditlog.ActionTxnDelete, removed.ID, details); err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).successf("Deleted %s", removed.ID)
			return nil
		},
	}
}
