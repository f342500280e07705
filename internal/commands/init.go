package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/gitops"
)

var errWorkspaceExists = errors.New("workspace already initialized")

type initOptions struct {
	currency    string
	locale      string
	fiscalStart string
	openDate    string
	git         bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoRoot(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), dir, opts)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&opts.currency, "currency", defaults.Workspace.OperatingCurrency, "operating currency")
	cmd.Flags().StringVar(&opts.locale, "locale", defaults.Workspace.Locale, "locale for amounts")
	cmd.Flags().StringVar(&opts.fiscalStart, "fiscal-start", defaults.Workspace.FiscalYearStart, "fiscal year start as MM-DD")
	cmd.Flags().StringVar(&opts.openDate, "open-date", "", "open date of the default accounts (default: start of the current fiscal year)")
	cmd.Flags().BoolVar(&opts.git, "git", false, "track the workspace in git and commit every change")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%w: %s", errWorkspaceExists, cfgPath)
	}

	cfg := config.Default()
	cfg.Workspace.OperatingCurrency = opts.currency
	cfg.Workspace.Locale = opts.locale
	cfg.Workspace.FiscalYearStart = opts.fiscalStart
	cfg.Git.AutoCommit = opts.git
	if err := cfg.Validate(); err != nil {
		return err
	}

	cal, err := cfg.Calendar(fiscal.WithClock(now))
	if err != nil {
		return err
	}
	openDate := cal.Start(cal.CurrentYear())
	if opts.openDate != "" {
		if openDate, err = parseDate(opts.openDate); err != nil {
			return err
		}
	}

	for _, d := range []string{"accounts", "logs", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), nil, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	chart := accounts.NewService(accounts.DefaultChart(openDate, cfg.Workspace.OperatingCurrency))
	if err := chart.Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	entry := auditlog.Entry{
		Time:    now(),
		Action:  auditlog.ActionInit,
		Subject: dir,
		Details: fmt.Sprintf("currency=%s fiscal_year_start=%s open=%s",
			cfg.Workspace.OperatingCurrency, cfg.Workspace.FiscalYearStart, openDate.Format(time.DateOnly)),
	}

	p := newPrinter(out)
	if opts.git {
		if err := gitops.Init(ctx, dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		hash, err := gitops.CommitAll(ctx, dir, "init: ledgerbook workspace", author)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		entry.Commit = hash
	}
	if err := auditlog.New(dir).Append(entry); err != nil {
		return err
	}

	p.successf("Initialized ledger workspace at %s", dir)
	p.infof("%d accounts opened on %s, fiscal year starts %s",
		len(chart.All()), openDate.Format(time.DateOnly), cfg.Workspace.FiscalYearStart)
	return nil
}
