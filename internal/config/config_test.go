package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Bookkeeping.Tolerances = map[string]string{"JPY": "1"}
	cfg.BankAccounts = []BankAccount{
		{Name: "Chase Checking", Format: "chase", LastFour: "1234", Account: "Assets:Bank:Checking"},
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "INR", cfg.Workspace.OperatingCurrency)
	assert.Equal(t, "en-IN", cfg.Workspace.Locale)
	assert.Equal(t, "04-01", cfg.Workspace.FiscalYearStart)
	assert.True(t, cfg.Workspace.CompactAmounts)
	assert.Equal(t, "0.00001", cfg.Bookkeeping.Tolerance)
	assert.Equal(t, "*", cfg.Bookkeeping.DefaultFlag)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.BankAccounts)
	assert.False(t, cfg.Git.AutoCommit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("workspace:\n  operating_currency: USD\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Workspace.OperatingCurrency)
	assert.Equal(t, "04-01", cfg.Workspace.FiscalYearStart)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "operating_currency: INR")
	assert.Contains(t, contents, "fiscal_year_start: 04-01")
	assert.Contains(t, contents, "compact_amounts: true")
	assert.NotContains(t, contents, "bank_accounts")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad fiscal start", func(c *Config) { c.Workspace.FiscalYearStart = "02-30" }, "workspace.fiscal_year_start"},
		{"bad locale", func(c *Config) { c.Workspace.Locale = "not a locale!" }, "workspace.locale"},
		{"lowercase currency", func(c *Config) { c.Workspace.OperatingCurrency = "inr" }, "workspace.operating_currency: must be upper case"},
		{"missing currency", func(c *Config) { c.Workspace.OperatingCurrency = "" }, "workspace.operating_currency: is required"},
		{"negative tolerance", func(c *Config) { c.Bookkeeping.Tolerance = "-1" }, "bookkeeping.tolerance"},
		{"bad per-currency tolerance", func(c *Config) { c.Bookkeeping.Tolerances = map[string]string{"USD": "x"} }, "bookkeeping.tolerances[USD]"},
		{"bad flag", func(c *Config) { c.Bookkeeping.DefaultFlag = "?" }, "bookkeeping.default_flag"},
		{"negative lock", func(c *Config) { c.Bookkeeping.LockedBefore = -1 }, "bookkeeping.locked_before"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"auto commit without author", func(c *Config) {
			c.Git = GitConfig{AutoCommit: true}
		}, "git.author_name: is required when auto_commit is on"},
		{"bad author email", func(c *Config) { c.Git.AuthorEmail = "nobody" }, "git.author_email"},
		{"unknown bank format", func(c *Config) {
			c.BankAccounts = []BankAccount{{Name: "HDFC", Format: "hdfc", Account: "Assets:Bank:HDFC"}}
		}, "bank_accounts[0].format: must be one of [chase mapped]"},
		{"bank account without target", func(c *Config) {
			c.BankAccounts = []BankAccount{{Name: "Chase", Format: "chase"}}
		}, "bank_accounts[0].account: is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Workspace.Locale = ""
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace.locale")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LEDGERBOOK_OPERATING_CURRENCY", "USD")
	t.Setenv("LEDGERBOOK_COMPACT_AMOUNTS", "false")
	t.Setenv("LEDGERBOOK_LOG_LEVEL", "debug")

	patch, err := LoadEnv()
	require.NoError(t, err)
	require.NotNil(t, patch.OperatingCurrency)
	assert.Nil(t, patch.Locale)
	assert.Nil(t, patch.FiscalYearStart)

	cfg := Default()
	cfg.Apply(patch)
	assert.Equal(t, "USD", cfg.Workspace.OperatingCurrency)
	assert.False(t, cfg.Workspace.CompactAmounts)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "en-IN", cfg.Workspace.Locale)
}

func TestLoadEnv_BadBool(t *testing.T) {
	t.Setenv("LEDGERBOOK_COMPACT_AMOUNTS", "maybe")
	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestCalendar(t *testing.T) {
	cfg := Default()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	cal, err := cfg.Calendar(fiscal.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, 2025, cal.CurrentYear())
	assert.Equal(t, 2024, cal.Year(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)))

	cfg.Workspace.FiscalYearStart = "13-01"
	_, err = cfg.Calendar()
	assert.ErrorIs(t, err, fiscal.ErrInvalidFiscalStart)
}

func TestTolerance(t *testing.T) {
	cfg := Default()
	cfg.Bookkeeping.Tolerances = map[string]string{"JPY": "1", "*": "0.01"}

	tol, err := cfg.Tolerance()
	require.NoError(t, err)
	assert.Equal(t, "1", tol.For("JPY").String())
	assert.Equal(t, "0.01", tol.For("INR").String())

	cfg.Bookkeeping.Tolerance = "abc"
	_, err = cfg.Tolerance()
	assert.Error(t, err)
}

func TestFormatter(t *testing.T) {
	cfg := Default()
	f := cfg.Formatter()
	assert.Equal(t, "₹2.50 L", f.Format(model.MustAmount("250000", "INR")))

	cfg.Workspace.CompactAmounts = false
	assert.Equal(t, "₹250,000.00", cfg.Formatter().Format(model.MustAmount("250000", "INR")))
}
