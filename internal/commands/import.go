package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/auditlog"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/importer"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

type importFlags struct {
	bank     string
	format   string
	account  string
	currency string
}

// source is where one file's rows go.
type source struct {
	parser importer.Parser
	opts   importer.Options
}

func newImportCommand() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank CSV exports into the journal",
		Long: `Import bank CSV exports. Without arguments every CSV in import/ is
imported and moved to import/processed/. A file is matched to a configured
bank account by --bank or by the account's last four digits in its name;
--format and --account override the match. Without a format the parser is
detected from the header row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			inbox := importer.NewInbox(w.root)
			type job struct {
				name, path string
				scanned    bool
			}
			var jobs []job
			if len(args) == 0 {
				files, err := inbox.Pending()
				if err != nil {
					return err
				}
				for _, f := range files {
					jobs = append(jobs, job{name: f.Name, path: f.Path, scanned: true})
				}
			}
			for _, a := range args {
				jobs = append(jobs, job{name: filepath.Base(a), path: a})
			}

			p := newPrinter(cmd.OutOrStdout())
			if len(jobs) == 0 {
				p.infof("Nothing to import")
				return nil
			}

			registry := importer.DefaultRegistry()
			im := importer.New(w.journal, w.logger)
			var failed []error

			for _, j := range jobs {
				src, err := resolveSource(registry, w.cfg, j.path, flags)
				if err != nil {
					return fmt.Errorf("%s: %w", j.name, err)
				}

				f, err := os.Open(j.path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", j.name, err)
				}
				rows, err := src.parser.Parse(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("parsing %s: %w", j.name, err)
				}

				res, err := im.Import(rows, src.opts)
				if err != nil {
					return fmt.Errorf("importing %s: %w", j.name, err)
				}
				for _, e := range res.Errors {
					p.errorf("%s: %v", j.name, e)
				}
				failed = append(failed, res.Errors...)

				if j.scanned && len(res.Errors) == 0 {
					if _, err := inbox.Archive(j.name); err != nil {
						return err
					}
				}
				details := fmt.Sprintf("account=%s imported=%d duplicates=%d errors=%d",
					src.opts.Account, len(res.Imported), res.Duplicates, len(res.Errors))
				if err := w.record(cmd.Context(), auditlog.ActionImport, j.name, details); err != nil {
					return err
				}
				p.successf("%s: %d imported into %s, %d duplicates skipped", j.name, len(res.Imported), src.opts.Account, res.Duplicates)
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d rows rejected: %w", len(failed), errors.Join(failed...))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.bank, "bank", "", "configured bank account name")
	cmd.Flags().StringVar(&flags.format, "format", "", "export format: chase or mapped (default: detect)")
	cmd.Flags().StringVar(&flags.account, "account", "", "ledger account the export belongs to")
	cmd.Flags().StringVar(&flags.currency, "currency", "", "currency for rows without one (default: operating currency)")
	return cmd
}

// resolveSource picks the parser and target account for the file at path.
func resolveSource(registry *importer.Registry, cfg *config.Config, path string, flags importFlags) (source, error) {
	fileName := filepath.Base(path)
	var bank *config.BankAccount
	for i := range cfg.BankAccounts {
		b := &cfg.BankAccounts[i]
		if flags.bank != "" && strings.EqualFold(b.Name, flags.bank) {
			bank = b
			break
		}
		if flags.bank == "" && b.LastFour != "" && strings.Contains(fileName, b.LastFour) {
			bank = b
			break
		}
	}
	if flags.bank != "" && bank == nil {
		return source{}, fmt.Errorf("no bank account named %q in %s", flags.bank, config.FileName)
	}

	format, account := flags.format, flags.account
	if bank != nil {
		if format == "" {
			format = bank.Format
		}
		if account == "" {
			account = bank.Account
		}
	}
	if account == "" {
		return source{}, errors.New("no target account: pass --account or --bank")
	}
	account, err := namespace.Canonical(account)
	if err != nil {
		return source{}, err
	}

	var parser importer.Parser
	if format == "" {
		if parser, err = registry.DetectFile(path); err != nil {
			return source{}, err
		}
	} else {
		var ok bool
		if parser, ok = registry.Get(format); !ok {
			return source{}, fmt.Errorf("unknown format %q, have %s", format, strings.Join(registry.Formats(), ", "))
		}
	}

	currency := flags.currency
	if currency == "" {
		currency = cfg.Workspace.OperatingCurrency
	}
	return source{parser: parser, opts: importer.Options{Account: account, Currency: currency}}, nil
}
