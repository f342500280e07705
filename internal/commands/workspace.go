package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/gitops"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/logging"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// now is the CLI's clock; tests replace it.
var now = time.Now

// workspace is an opened ledger directory with its stores wired up.
type workspace struct {
	root      string
	cfg       *config.Config
	logger    *slog.Logger
	calendar  *fiscal.Calendar
	accounts  *accounts.Service
	validator *journal.Validator
	journal   *journal.Service
	audit     *auditlog.Log

	txns []model.Transaction // journal contents when the workspace was opened
}

func repoRoot(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("repo")
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// loadConfig reads ledgerbook.yaml, applies LEDGERBOOK_* overrides and
// validates the result.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%s is not a ledgerbook workspace (run ledgerbook init): %w", root, err)
	}
	patch, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.Apply(patch)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openWorkspace loads the config, then the chart of accounts and the journal
// in parallel.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	root, err := repoRoot(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
	cal, err := cfg.Calendar(fiscal.WithClock(now))
	if err != nil {
		return nil, err
	}
	tol, err := cfg.Tolerance()
	if err != nil {
		return nil, err
	}

	var (
		g     errgroup.Group
		chart *accounts.Service
		txns  []model.Transaction
	)
	g.Go(func() error {
		var err error
		chart, err = accounts.Load(root)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = journal.NewService(root, nil).All()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("workspace opened", "root", root, "accounts", len(chart.All()), "transactions", len(txns))

	validator := journal.NewValidator(chart,
		journal.WithTolerance(tol),
		journal.WithLockedBefore(cal, cfg.Bookkeeping.LockedBefore),
	)

	return &workspace{
		root:      root,
		cfg:       cfg,
		logger:    logger,
		calendar:  cal,
		accounts:  chart,
		validator: validator,
		journal: journal.NewService(root, validator,
			journal.WithOperatingCurrency(cfg.Workspace.OperatingCurrency),
			journal.WithLogger(logger),
		),
		audit: auditlog.New(root),
		txns:  txns,
	}, nil
}

// record commits the change when auto-commit is on and appends it to the
// audit log.
func (w *workspace) record(ctx context.Context, action auditlog.Action, subject, details string) error {
	entry := auditlog.Entry{Time: now(), Action: action, Subject: subject, Details: details}

	if w.cfg.Git.AutoCommit {
		author := gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
		hash, err := gitops.CommitAll(ctx, w.root, fmt.Sprintf("%s: %s", action, subject), author)
		if err != nil {
			return fmt.Errorf("committing %s: %w", action, err)
		}
		entry.Commit = hash
		w.logger.Debug("committed", "action", action, "commit", hash)
	}

	return w.audit.Append(entry)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// dateOrToday parses s, or returns today's date when s is empty.
func dateOrToday(s string) (time.Time, error) {
	if s == "" {
		y, m, d := now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(s)
}
