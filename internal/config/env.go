package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces environment overrides, e.g. LEDGERBOOK_LOCALE.
const EnvPrefix = "LEDGERBOOK"

// WorkspacePatch is a partial update of the config. Nil fields are left
// unchanged. It is filled from the environment by LoadEnv or built directly
// by callers such as CLI flags.
type WorkspacePatch struct {
	OperatingCurrency *string `envconfig:"OPERATING_CURRENCY"`
	Locale            *string `envconfig:"LOCALE"`
	FiscalYearStart   *string `envconfig:"FISCAL_YEAR_START"`
	CompactAmounts    *bool   `envconfig:"COMPACT_AMOUNTS"`
	Tolerance         *string `envconfig:"TOLERANCE"`
	LogLevel          *string `envconfig:"LOG_LEVEL"`
	LogFormat         *string `envconfig:"LOG_FORMAT"`
}

// LoadEnv reads LEDGERBOOK_* variables into a patch.
func LoadEnv() (WorkspacePatch, error) {
	var p WorkspacePatch
	if err := envconfig.Process(EnvPrefix, &p); err != nil {
		return WorkspacePatch{}, fmt.Errorf("reading environment: %w", err)
	}
	return p, nil
}

// Apply copies every set field of p into c.
func (c *Config) Apply(p WorkspacePatch) {
	if p.OperatingCurrency != nil {
		c.Workspace.OperatingCurrency = *p.OperatingCurrency
	}
	if p.Locale != nil {
		c.Workspace.Locale = *p.Locale
	}
	if p.FiscalYearStart != nil {
		c.Workspace.FiscalYearStart = *p.FiscalYearStart
	}
	if p.CompactAmounts != nil {
		c.Workspace.CompactAmounts = *p.CompactAmounts
	}
	if p.Tolerance != nil {
		c.Bookkeeping.Tolerance = *p.Tolerance
	}
	if p.LogLevel != nil {
		c.Logging.Level = *p.LogLevel
	}
	if p.LogFormat != nil {
		c.Logging.Format = *p.LogFormat
	}
}
