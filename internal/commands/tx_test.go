package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestParsePosting(t *testing.T) {
	tests := []struct {
		in       string
		account  string
		amount   string // "" for elided
		currency string
		cost     string
		price    string
	}{
		{in: "Assets:Cash", account: "Assets:Cash"},
		{in: "Expenses:Food 450", account: "Expenses:Food", amount: "450", currency: "INR"},
		{in: "  Expenses:Food   -3.5  usd ", account: "Expenses:Food", amount: "-3.5", currency: "USD"},
		{in: "Assets:Broker:AAPL 10 AAPL {150.25 USD}", account: "Assets:Broker:AAPL", amount: "10", currency: "AAPL", cost: "150.25 USD"},
		{in: "Assets:Bank:USD 100 USD @ 83.10 INR", account: "Assets:Bank:USD", amount: "100", currency: "USD", price: "83.1 INR"},
		{in: "Assets:Broker:AAPL 10 AAPL {150 USD} @ 155 USD", account: "Assets:Broker:AAPL", amount: "10", currency: "AAPL", cost: "150 USD", price: "155 USD"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := parsePosting(tt.in, "INR")
			require.NoError(t, err)
			assert.Equal(t, tt.account, p.Account)
			if tt.amount == "" {
				assert.True(t, p.Elided())
			} else {
				require.NotNil(t, p.Amount)
				assert.True(t, p.Amount.Number.Equal(decimal.RequireFromString(tt.amount)))
				assert.Equal(t, tt.currency, p.Amount.Currency)
			}
			if tt.cost == "" {
				assert.Nil(t, p.Cost)
			} else {
				require.NotNil(t, p.Cost)
				assert.Equal(t, tt.cost, p.Cost.Number.String()+" "+p.Cost.Currency)
			}
			if tt.price == "" {
				assert.Nil(t, p.Price)
			} else {
				require.NotNil(t, p.Price)
				assert.Equal(t, tt.price, p.Price.Number.String()+" "+p.Price.Currency)
			}
		})
	}
}

func TestParsePosting_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"Expenses:Food ten",
		"Expenses:Food 1 INR extra",
		"Assets:Broker:AAPL 10 AAPL {150 USD",
		"Assets:Cash @ 1 USD",
		"Assets:Cash 1 USD @",
	} {
		_, err := parsePosting(in, "INR")
		assert.Error(t, err, in)
	}
}

func TestTxAdd(t *testing.T) {
	dir := newWorkspace(t)

	out := mustRun(t, "tx", "add", "--repo", dir,
		"--date", "2025-01-15", "--payee", "Cafe", "-m", "Lunch", "--meta", "receipt=r1.jpg",
		"-p", "Expenses:Food 450", "-p", "Assets:Cash")
	assert.Contains(t, out, "Added 2025-01-001 on 2025-01-15")
	assert.Contains(t, out, "Assets:Cash  -₹450.00 (inferred)")

	txns, err := journal.NewService(dir, nil).ReadMonth(2025, time.January)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Cafe", txns[0].Payee)
	assert.Equal(t, model.FlagCleared, txns[0].Flag)
	assert.Equal(t, "r1.jpg", txns[0].Metadata["receipt"])

	out = mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-01-16", "--pending",
		"-p", "Expenses:Food 50", "-p", "Assets:Cash -50")
	assert.Contains(t, out, "Added 2025-01-002")

	txns, err = journal.NewService(dir, nil).ReadMonth(2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, model.FlagPending, txns[1].Flag)
}

func TestTxAdd_Rejected(t *testing.T) {
	dir := newWorkspace(t)

	tests := []struct {
		name     string
		postings []string
		want     error
	}{
		{"imbalance", []string{"Expenses:Food 10", "Assets:Cash -5"}, journal.ErrImbalance},
		{"two elided", []string{"Expenses:Food", "Assets:Cash"}, journal.ErrAmbiguousElision},
		{"unknown account", []string{"Expenses:Travel 10", "Assets:Cash"}, journal.ErrUnknownAccount},
		{"single posting", []string{"Expenses:Food"}, journal.ErrUninferableElision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"tx", "add", "--repo", dir, "--date", "2025-01-15"}
			for _, p := range tt.postings {
				args = append(args, "-p", p)
			}
			_, err := run(t, args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "2025", "01", "journal.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestTxAdd_BeforeOpenDate(t *testing.T) {
	dir := newWorkspace(t)
	_, err := run(t, "tx", "add", "--repo", dir, "--date", "2023-12-31", "-p", "Expenses:Food 1", "-p", "Assets:Cash")
	assert.ErrorIs(t, err, journal.ErrAccountClosed)
}

func TestTxCheck(t *testing.T) {
	dir := newWorkspace(t)
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-01-15", "-p", "Expenses:Food 450", "-p", "Assets:Cash")
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-02-01", "-p", "Assets:Bank:Checking 1000", "-p", "Income:Salary -1000")

	out := mustRun(t, "tx", "check", "--repo", dir)
	assert.Contains(t, out, "2 transactions balanced across 13 accounts")

	// hand-edited month with an unbalanced entry
	path := filepath.Join(dir, "2025", "03", "journal.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, journal.WriteTransactions(f, []model.Transaction{{
		ID:   "2025-03-001",
		Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Flag: model.FlagCleared,
		Postings: []model.Posting{
			{Account: "Expenses:Food", Amount: &model.Amount{Number: decimal.NewFromInt(10), Currency: "INR"}},
			{Account: "Assets:Cash", Amount: &model.Amount{Number: decimal.NewFromInt(-9), Currency: "INR"}},
		},
	}}))
	require.NoError(t, f.Close())

	out, err = run(t, "tx", "check", "--repo", dir)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, err.Error(), "1 of 3 transactions")
	assert.Contains(t, out, "transaction 2025-03-001")
}

func TestTxCheck_LockedPeriod(t *testing.T) {
	dir := newWorkspace(t)
	mustRun(t, "tx", "add", "--repo", dir, "--date", "2024-06-01", "-p", "Expenses:Food 10", "-p", "Assets:Cash")

	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Bookkeeping.LockedBefore = 2025
	require.NoError(t, config.Save(cfgPath, cfg))

	_, err = run(t, "tx", "add", "--repo", dir, "--date", "2025-03-31", "-p", "Expenses:Food 10", "-p", "Assets:Cash")
	assert.ErrorIs(t, err, journal.ErrPeriodLocked)

	mustRun(t, "tx", "add", "--repo", dir, "--date", "2025-04-01", "-p", "Expenses:Food 10", "-p", "Assets:Cash")

	out, err := run(t, "tx", "check", "--repo", dir)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "fiscal period is locked")
}
