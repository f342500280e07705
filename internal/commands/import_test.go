package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/importer"
)

const mappedExport = `Date,Payee,Narration,Amount,Currency,Category
2025-01-05,Big Bazaar,Groceries,"-2,450.50",INR,Expenses:Food
15/01/2025,Employer,January salary,₹85000,,Income:Salary
2025-01-20,,ATM withdrawal,-2000,INR,
`

func writeImport(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", name), []byte(data), 0o644))
}

func TestImport_ScanAndMove(t *testing.T) {
	dir := newWorkspace(t)
	writeImport(t, dir, "hdfc-jan.csv", mappedExport)

	out := mustRun(t, "import", "--account", "Assets:Bank:Checking", "--repo", dir)
	assert.Contains(t, out, "hdfc-jan.csv: 3 imported into Assets:Bank:Checking, 0 duplicates skipped")

	assert.False(t, fileExists(t, filepath.Join(dir, "import", "hdfc-jan.csv")))
	assert.True(t, fileExists(t, filepath.Join(dir, "import", "processed", "hdfc-jan.csv")))

	out = mustRun(t, "balances", "--repo", dir)
	assert.Contains(t, out, "₹80,549.50")
	assert.Contains(t, out, "Uncategorized")

	out = mustRun(t, "import", "--account", "Assets:Bank:Checking", "--repo", dir)
	assert.Contains(t, out, "Nothing to import")
}

func TestImport_ExplicitFileSkipsDuplicates(t *testing.T) {
	dir := newWorkspace(t)
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(mappedExport), 0o644))

	mustRun(t, "import", path, "--account", "Assets:Bank:Checking", "--repo", dir)
	out := mustRun(t, "import", path, "--account", "Assets:Bank:Checking", "--repo", dir)
	assert.Contains(t, out, "export.csv: 0 imported into Assets:Bank:Checking, 3 duplicates skipped")
	assert.True(t, fileExists(t, path))
}

func TestImport_RowErrorsKeepFile(t *testing.T) {
	dir := newWorkspace(t)
	writeImport(t, dir, "bad.csv", "Date,Narration,Amount,Category\n2025-01-05,Gadget,-10,Expenses:Gadgets\n2025-01-06,Tea,-5,\n")

	out, err := run(t, "import", "--account", "Assets:Bank:Checking", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 rows rejected")
	assert.Contains(t, out, "bad.csv: 1 imported")
	assert.True(t, fileExists(t, filepath.Join(dir, "import", "bad.csv")))
}

func TestImport_NoAccount(t *testing.T) {
	dir := newWorkspace(t)
	writeImport(t, dir, "x.csv", mappedExport)

	_, err := run(t, "import", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target account")
}

func TestResolveSource(t *testing.T) {
	cfg := config.Default()
	cfg.BankAccounts = []config.BankAccount{
		{Name: "Chase Checking", Format: "chase", LastFour: "1234", Account: "Assets:Bank:Chase"},
		{Name: "HDFC", Format: "mapped", Account: "Assets:Bank:HDFC"},
	}
	registry := importer.DefaultRegistry()

	src, err := resolveSource(registry, cfg, "Chase1234_Activity.csv", importFlags{})
	require.NoError(t, err)
	assert.Equal(t, "chase", src.parser.Format())
	assert.Equal(t, "Assets:Bank:Chase", src.opts.Account)
	assert.Equal(t, "INR", src.opts.Currency)

	src, err = resolveSource(registry, cfg, "statement.csv", importFlags{bank: "hdfc", currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "mapped", src.parser.Format())
	assert.Equal(t, "Assets:Bank:HDFC", src.opts.Account)
	assert.Equal(t, "USD", src.opts.Currency)

	src, err = resolveSource(registry, cfg, "Chase1234.csv", importFlags{account: "Assets : Bank : Other"})
	require.NoError(t, err)
	assert.Equal(t, "Assets:Bank:Other", src.opts.Account)

	_, err = resolveSource(registry, cfg, "x.csv", importFlags{bank: "Amex"})
	assert.ErrorContains(t, err, `no bank account named "Amex"`)

	_, err = resolveSource(registry, cfg, "x.csv", importFlags{account: "Assets:Bank:X", format: "ofx"})
	assert.ErrorContains(t, err, "unknown format")

	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(mappedExport), 0o644))
	src, err = resolveSource(registry, cfg, path, importFlags{account: "Assets:Bank:X"})
	require.NoError(t, err)
	assert.Equal(t, "mapped", src.parser.Format())

	_, err = resolveSource(registry, cfg, filepath.Join(t.TempDir(), "gone.csv"), importFlags{account: "Assets:Bank:X"})
	assert.Error(t, err)
}
