package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/report"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements",
	}
	cmd.AddCommand(newReportSummaryCommand(), newReportBalanceCommand(), newReportIncomeCommand())
	return cmd
}

func newReportBalanceCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance sheet: assets, liabilities and equity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			date, err := dateOrToday(asOf)
			if err != nil {
				return err
			}
			r := report.BalanceSheet(w.accounts.All(), w.txns, date, w.cfg.Workspace.OperatingCurrency)
			if len(r.Mixed) > 0 {
				w.logger.Warn("accounts hold several currencies; totals approximate", "accounts", r.Mixed)
			}
			return report.Write(cmd.OutOrStdout(), r, w.cfg.Formatter())
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "report date YYYY-MM-DD (default: today)")
	return cmd
}

func newReportIncomeCommand() *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "income",
		Short: "Income statement for a fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			fy := 0
			if year != "" {
				if fy, err = strconv.Atoi(year); err != nil {
					return fmt.Errorf("invalid fiscal year %q", year)
				}
			}
			r := report.IncomeStatement(w.accounts.All(), w.txns, w.calendar.Period(fy), w.cfg.Workspace.OperatingCurrency)
			if len(r.Mixed) > 0 {
				w.logger.Warn("accounts hold several currencies; totals approximate", "accounts", r.Mixed)
			}
			return report.Write(cmd.OutOrStdout(), r, w.cfg.Formatter())
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "fiscal year, e.g. 2024 for FY2024 (default: current)")
	return cmd
}

func newReportSummaryCommand() *cobra.Command {
	var (
		asOf   string
		recent int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Net worth with total assets, liabilities and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			date, err := dateOrToday(asOf)
			if err != nil {
				return err
			}
			if recent < 0 {
				return fmt.Errorf("--recent must not be negative")
			}
			s := report.NewSummary(w.accounts.All(), w.txns, date, w.cfg.Workspace.OperatingCurrency, recent)
			if len(s.Mixed) > 0 {
				w.logger.Warn("accounts hold several currencies; totals approximate", "accounts", s.Mixed)
			}
			return report.WriteSummary(cmd.OutOrStdout(), s, w.cfg.Formatter())
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "summary date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&recent, "recent", 5, "how many recent transactions to show")
	return cmd
}
