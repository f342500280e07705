package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountsListCommand(),
		newAccountsAddCommand(),
		newAccountsCloseCommand(),
		newAccountsRenameCommand(),
		newAccountsRetypeCommand(),
	)
	return cmd
}

func parseAccountType(s string) (model.AccountType, error) {
	for _, t := range model.AccountTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// parseMetadata turns repeated key=value flags into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q, want key=value", pair)
		}
		md[k] = strings.TrimSpace(v)
	}
	return md, nil
}

func newAccountsListCommand() *cobra.Command {
	var typeFilter string
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			accts, err := w.accounts.List()
			if err != nil {
				return err
			}
			if typeFilter != "" {
				t, err := parseAccountType(typeFilter)
				if err != nil {
					return err
				}
				accts = w.accounts.ByType(t)
			}
			sort.Slice(accts, func(i, j int) bool { return accts[i].Name < accts[j].Name })

			width := 0
			for _, a := range accts {
				width = max(width, runewidth.StringWidth(a.Name))
			}

			out := cmd.OutOrStdout()
			for _, a := range accts {
				status := "opened " + a.OpenDate.Format(time.DateOnly)
				if a.IsClosed() {
					if openOnly {
						continue
					}
					status = "closed " + a.CloseDate.Format(time.DateOnly)
				}
				if _, err := fmt.Fprintf(out, "%s  %-11s  %s\n", runewidth.FillRight(a.Name, width), a.Type, status); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "only accounts of this type")
	cmd.Flags().BoolVar(&openOnly, "open", false, "hide closed accounts")
	return cmd
}

func newAccountsAddCommand() *cobra.Command {
	var (
		typeName string
		open     string
		currency string
		meta     []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Declare a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			acct := model.Account{Name: args[0]}
			if typeName != "" {
				if acct.Type, err = parseAccountType(typeName); err != nil {
					return err
				}
			}
			if acct.OpenDate, err = dateOrToday(open); err != nil {
				return err
			}
			if acct.Metadata, err = parseMetadata(meta); err != nil {
				return err
			}
			if currency == "" {
				currency = w.cfg.Workspace.OperatingCurrency
			}
			if acct.Metadata == nil {
				acct.Metadata = map[string]string{}
			}
			acct.Metadata["currency"] = currency

			added, err := w.accounts.Add(acct)
			if err != nil {
				return err
			}
			if err := w.accounts.Save(w.root); err != nil {
				return err
			}
			if err := w.record(cmd.Context(), auditlog.ActionAccountAdd, added.Name, "type="+string(added.Type)); err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).successf("Added %s (%s) open from %s", added.Name, added.Type, added.OpenDate.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "account type (default: derived from the root segment)")
	cmd.Flags().StringVar(&open, "open", "", "open date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&currency, "currency", "", "account currency (default: operating currency)")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "metadata key=value, repeatable")
	return cmd
}

func newAccountsCloseCommand() *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "close <name>",
		Short: "Close an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			name, err := namespace.Canonical(args[0])
			if err != nil {
				return err
			}
			date, err := dateOrToday(on)
			if err != nil {
				return err
			}

			closed, err := w.accounts.Close(name, date)
			if err != nil {
				return err
			}
			if err := w.accounts.Save(w.root); err != nil {
				return err
			}
			if err := w.record(cmd.Context(), auditlog.ActionAccountClose, closed.Name, "on="+date.Format(time.DateOnly)); err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).successf("Closed %s on %s", closed.Name, date.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().StringVar(&on, "date", "", "close date YYYY-MM-DD (default: today)")
	return cmd
}

func newAccountsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename an account and rewrite its postings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			name, err := namespace.Canonical(args[0])
			if err != nil {
				return err
			}
			renamed, err := w.accounts.Rename(name, args[1])
			if err != nil {
				return err
			}
			return finishMove(cmd, w, auditlog.ActionAccountRename, name, renamed)
		},
	}
}

func newAccountsRetypeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retype <name> <type>",
		Short: "Move an account under another root category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			name, err := namespace.Canonical(args[0])
			if err != nil {
				return err
			}
			typ, err := parseAccountType(args[1])
			if err != nil {
				return err
			}
			moved, err := w.accounts.Retype(name, typ)
			if err != nil {
				return err
			}
			return finishMove(cmd, w, auditlog.ActionAccountRetype, name, moved)
		},
	}
}

// finishMove rewrites journal postings from oldName to the account's new
// name, then saves the chart.
func finishMove(cmd *cobra.Command, w *workspace, action auditlog.Action, oldName string, acct model.Account) error {
	p := newPrinter(cmd.OutOrStdout())
	if acct.Name == oldName {
		p.infof("%s unchanged", oldName)
		return nil
	}

	n, err := w.journal.RenameAccount(oldName, acct.Name)
	if err != nil {
		return err
	}
	if err := w.accounts.Save(w.root); err != nil {
		return err
	}
	if err := w.record(cmd.Context(), action, acct.Name, fmt.Sprintf("from=%s postings=%d", oldName, n)); err != nil {
		return err
	}

	p.successf("Moved %s to %s (%s), %d postings updated", oldName, acct.Name, acct.Type, n)
	return nil
}
