package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/fiscal"
)

func newFiscalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiscal",
		Short: "Fiscal year calculations",
	}
	cmd.AddCommand(newFiscalYearCommand(), newFiscalPeriodCommand(), newFiscalSummaryCommand())
	return cmd
}

func workspaceCalendar(cmd *cobra.Command) (*fiscal.Calendar, error) {
	root, err := repoRoot(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return cfg.Calendar(fiscal.WithClock(now))
}

func newFiscalYearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "year [date]",
		Short: "Show the fiscal year a date falls in (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := workspaceCalendar(cmd)
			if err != nil {
				return err
			}
			var s string
			if len(args) > 0 {
				s = args[0]
			}
			date, err := dateOrToday(s)
			if err != nil {
				return err
			}
			p := cal.PeriodOf(date)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s falls in %s (%s to %s)\n",
				date.Format(time.DateOnly), p, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
			return err
		},
	}
}

func newFiscalPeriodCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "period [year]",
		Short: "Show the bounds of a fiscal year (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := workspaceCalendar(cmd)
			if err != nil {
				return err
			}
			year := 0
			if len(args) > 0 {
				if year, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid fiscal year %q", args[0])
				}
			}
			p := cal.Period(year)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s to %s\n",
				p, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
			return err
		},
	}
}

func newFiscalSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count journal transactions per fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			buckets := w.calendar.Bucket(w.txns)
			if len(buckets) == 0 {
				newPrinter(cmd.OutOrStdout()).infof("No transactions yet")
				return nil
			}
			for _, b := range buckets {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s to %s  %d transactions\n", b.Period,
					b.Period.Start.Format(time.DateOnly), b.Period.End.Format(time.DateOnly), len(b.Transactions)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
