package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/cleared-dev/ledgerbook/internal/currency"
	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/journal"
)

// Calendar returns the fiscal calendar for the configured year start.
func (c *Config) Calendar(opts ...fiscal.Option) (*fiscal.Calendar, error) {
	start, err := fiscal.ParseStart(c.Workspace.FiscalYearStart)
	if err != nil {
		return nil, err
	}
	return fiscal.New(start, opts...), nil
}

// Tolerance returns the balancing tolerance with per-currency overrides.
func (c *Config) Tolerance() (journal.Tolerance, error) {
	def, err := decimal.NewFromString(c.Bookkeeping.Tolerance)
	if err != nil {
		return journal.Tolerance{}, fmt.Errorf("parsing tolerance %q: %w", c.Bookkeeping.Tolerance, err)
	}
	tol := journal.Tolerance{Default: def}
	if len(c.Bookkeeping.Tolerances) > 0 {
		tol.PerCurrency = make(map[string]decimal.Decimal, len(c.Bookkeeping.Tolerances))
		for cur, s := range c.Bookkeeping.Tolerances {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return journal.Tolerance{}, fmt.Errorf("parsing tolerance for %s %q: %w", cur, s, err)
			}
			tol.PerCurrency[cur] = d
		}
	}
	return tol, nil
}

// Language returns the configured locale, falling back to English.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Workspace.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Formatter returns the amount formatter for the workspace.
func (c *Config) Formatter() *currency.Formatter {
	return currency.NewFormatter(
		currency.WithCompact(c.Workspace.CompactAmounts),
		currency.WithLocale(c.Language()),
	)
}
