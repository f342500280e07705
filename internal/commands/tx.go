package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newTxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"txn"},
		Short:   "Record, list, edit and check transactions",
	}
	cmd.AddCommand(
		newTxAddCommand(),
		newTxListCommand(),
		newTxUpdateCommand(),
		newTxDeleteCommand(),
		newTxCheckCommand(),
	)
	return cmd
}

// parseAmountText parses "NUMBER [CURRENCY]".
func parseAmountText(s, defaultCurrency string) (model.Amount, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return model.ParseAmount(fields[0], defaultCurrency)
	case 2:
		return model.ParseAmount(fields[0], strings.ToUpper(fields[1]))
	default:
		return model.Amount{}, fmt.Errorf("invalid amount %q, want NUMBER [CURRENCY]", strings.TrimSpace(s))
	}
}

// parsePosting parses "ACCOUNT [NUMBER [CURRENCY]] [{COST [CURRENCY]}] [@ PRICE [CURRENCY]]".
// A bare account is an elided posting.
func parsePosting(s, defaultCurrency string) (model.Posting, error) {
	var p model.Posting
	body := s

	if i := strings.Index(body, "@"); i >= 0 {
		price, err := parseAmountText(body[i+1:], defaultCurrency)
		if err != nil {
			return p, fmt.Errorf("posting %q price: %w", s, err)
		}
		p.Price = &model.Price{Number: price.Number, Currency: price.Currency}
		body = body[:i]
	}

	if i := strings.Index(body, "{"); i >= 0 {
		j := strings.Index(body, "}")
		if j < i {
			return p, fmt.Errorf("posting %q: unclosed cost", s)
		}
		cost, err := parseAmountText(body[i+1:j], defaultCurrency)
		if err != nil {
			return p, fmt.Errorf("posting %q cost: %w", s, err)
		}
		p.Cost = &model.Cost{Number: cost.Number, Currency: cost.Currency}
		body = body[:i] + body[j+1:]
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return p, fmt.Errorf("posting %q: missing account", s)
	}
	p.Account = fields[0]
	if len(fields) == 1 {
		if p.Cost != nil || p.Price != nil {
			return p, fmt.Errorf("posting %q: an elided amount cannot carry a cost or price", s)
		}
		return p, nil
	}

	amt, err := parseAmountText(strings.Join(fields[1:], " "), defaultCurrency)
	if err != nil {
		return p, fmt.Errorf("posting %q: %w", s, err)
	}
	p.Amount = &amt
	return p, nil
}

func newTxAddCommand() *cobra.Command {
	var (
		on        string
		payee     string
		narration string
		postings  []string
		pending   bool
		meta      []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a balanced transaction. Each --posting is
"ACCOUNT [NUMBER [CURRENCY]] [{COST CURRENCY}] [@ PRICE CURRENCY]".
At most one posting may omit its amount; it is inferred from the others.`,
		Example: `  ledgerbook tx add -m "Lunch" -p "Expenses:Food 450" -p "Assets:Cash"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			txn := model.Transaction{
				Payee:     payee,
				Narration: narration,
				Flag:      model.Flag(w.cfg.Bookkeeping.DefaultFlag),
			}
			if pending {
				txn.Flag = model.FlagPending
			}
			if txn.Date, err = dateOrToday(on); err != nil {
				return err
			}
			if txn.Metadata, err = parseMetadata(meta); err != nil {
				return err
			}
			for _, s := range postings {
				p, err := parsePosting(s, w.cfg.Workspace.OperatingCurrency)
				if err != nil {
					return err
				}
				txn.Postings = append(txn.Postings, p)
			}

			added, err := w.journal.Add(txn)
			if err != nil {
				return err
			}
			if err := w.record(cmd.Context(), auditlog.ActionTxnAdd, added.ID, added.Narration); err != nil {
				return err
			}

			fmtr := w.cfg.Formatter()
			pr := newPrinter(cmd.OutOrStdout())
			pr.successf("Added %s on %s", added.ID, added.Date.Format(time.DateOnly))
			for _, p := range added.Postings {
				suffix := ""
				if p.Inferred {
					suffix = " (inferred)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "    %s  %s%s\n", p.Account, fmtr.Format(*p.Amount), suffix)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&on, "date", "", "transaction date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&payee, "payee", "", "payee")
	cmd.Flags().StringVarP(&narration, "narration", "m", "", "description")
	cmd.Flags().StringArrayVarP(&postings, "posting", "p", nil, "posting, repeatable")
	cmd.Flags().BoolVar(&pending, "pending", false, "flag the transaction as pending")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "metadata key=value, repeatable")
	_ = cmd.MarkFlagRequired("posting")
	return cmd
}

var errCheckFailed = errors.New("journal check failed")

func newTxCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Re-validate every journal transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			failed := 0
			seen := make(map[string]bool, len(w.txns))
			for _, txn := range w.txns {
				if seen[txn.ID] {
					failed++
					p.errorf("transaction %s: duplicate ID", txn.ID)
					continue
				}
				seen[txn.ID] = true

				if _, err := w.validator.Validate(stripInferred(txn)); err != nil {
					failed++
					for _, line := range strings.Split(err.Error(), "\n") {
						p.errorf("%s", line)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d transactions", errCheckFailed, failed, len(w.txns))
			}
			p.successf("%d transactions balanced across %d accounts", len(w.txns), len(w.accounts.All()))
			return nil
		},
	}
}

// stripInferred elides amounts the validator filled in when the transaction
// was written, so the check re-derives them.
func stripInferred(txn model.Transaction) model.Transaction {
	c := txn.Clone()
	for i, p := range c.Postings {
		if p.Inferred {
			c.Postings[i].Amount = nil
			c.Postings[i].Inferred = false
		}
	}
	return c
}
