package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixClock pins the CLI clock for the duration of a test.
func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// run executes the CLI in-process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// mustRun fails the test when the command errors.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "ledgerbook %s", strings.Join(args, " "))
	return out
}

// newWorkspace initializes an INR workspace whose accounts opened on 2024-01-01.
func newWorkspace(t *testing.T) string {
	t.Helper()
	fixClock(t, time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC))
	dir := t.TempDir()
	mustRun(t, "init", dir, "--open-date", "2024-01-01")
	return dir
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}

func TestNotAWorkspace(t *testing.T) {
	_, err := run(t, "balances", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a ledgerbook workspace")
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "--version")
	assert.Contains(t, out, "ledgerbook version dev (commit: ")
}

func TestEnvOverride(t *testing.T) {
	dir := newWorkspace(t)
	t.Setenv("LEDGERBOOK_FISCAL_YEAR_START", "01-01")

	out := mustRun(t, "fiscal", "year", "2025-03-31", "--repo", dir)
	assert.Equal(t, "2025-03-31 falls in FY2025 (2025-01-01 to 2025-12-31)\n", out)
}

func TestEnvOverride_Invalid(t *testing.T) {
	dir := newWorkspace(t)
	t.Setenv("LEDGERBOOK_LOCALE", "not a locale!")

	_, err := run(t, "balances", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace.locale")
}

func TestFiscal(t *testing.T) {
	dir := newWorkspace(t)

	out := mustRun(t, "fiscal", "year", "2025-03-31", "--repo", dir)
	assert.Equal(t, "2025-03-31 falls in FY2024 (2024-04-01 to 2025-03-31)\n", out)

	out = mustRun(t, "fiscal", "year", "--repo", dir)
	assert.Equal(t, "2025-05-10 falls in FY2025 (2025-04-01 to 2026-03-31)\n", out)

	out = mustRun(t, "fiscal", "period", "2024", "--repo", dir)
	assert.Equal(t, "FY2024: 2024-04-01 to 2025-03-31\n", out)

	out = mustRun(t, "fiscal", "period", "--repo", dir)
	assert.Equal(t, "FY2025: 2025-04-01 to 2026-03-31\n", out)

	_, err := run(t, "fiscal", "period", "next", "--repo", dir)
	assert.Error(t, err)
}

func TestFiscalSummary(t *testing.T) {
	dir := newWorkspace(t)

	out := mustRun(t, "fiscal", "summary", "--repo", dir)
	assert.Contains(t, out, "No transactions yet")

	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-03-31", "-p", "Expenses:Food 10", "-p", "Assets:Cash")
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-04-01", "-p", "Expenses:Food 20", "-p", "Assets:Cash")
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-04-02", "-p", "Expenses:Food 30", "-p", "Assets:Cash")

	out = mustRun(t, "fiscal", "summary", "--repo", dir)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "FY2024  2024-04-01 to 2025-03-31  1 transactions", lines[0])
	assert.Equal(t, "FY2025  2025-04-01 to 2026-03-31  2 transactions", lines[1])
}

func TestReports(t *testing.T) {
	dir := newWorkspace(t)
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2024-05-01", "-m", "May salary",
		"-p", "Assets:Bank:Checking 50000", "-p", "Income:Salary")
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2024-05-03", "-m", "Rent",
		"-p", "Expenses:Housing:Rent 20000", "-p", "Assets:Bank:Checking")
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-04-05", "-m", "Dinner",
		"-p", "Expenses:Food 1500", "-p", "Assets:Bank:Checking")

	out := mustRun(t, "report", "income", "--year", "2024", "--repo", dir)
	assert.Contains(t, out, "Income Statement FY2024 (2024-04-01 to 2025-03-31)")
	assert.Contains(t, out, "Net Income: ₹30,000.00")
	assert.NotContains(t, out, "Food")

	out = mustRun(t, "report", "balance", "--as-of", "2025-03-31", "--repo", dir)
	assert.Contains(t, out, "Balance Sheet as of 2025-03-31")
	assert.Contains(t, out, "Net Worth: ₹30,000.00")

	out = mustRun(t, "report", "balance", "--repo", dir)
	assert.Contains(t, out, "Net Worth: ₹28,500.00")

	out = mustRun(t, "report", "summary", "--as-of", "2025-03-31", "--recent", "1", "--repo", dir)
	assert.Contains(t, out, "Summary as of 2025-03-31")
	assert.Contains(t, out, "Total Assets:      ₹30,000.00")
	assert.Contains(t, out, "Net Worth:         ₹30,000.00")
	assert.Contains(t, out, `"Rent"`)
	assert.NotContains(t, out, "May salary")
	assert.NotContains(t, out, "Dinner")
}
