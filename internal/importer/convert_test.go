package importer

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestToTransaction(t *testing.T) {
	opts := Options{Account: "Assets:Bank:Checking", Currency: "INR"}

	tests := []struct {
		name        string
		bt          model.BankTransaction
		wantCounter string
		wantCur     string
	}{
		{
			name:        "spend without category",
			bt:          model.BankTransaction{Date: day(2025, 1, 2), Description: "ATM", Amount: decimal.NewFromInt(-500)},
			wantCounter: "Expenses:Uncategorized",
			wantCur:     "INR",
		},
		{
			name:        "income without category",
			bt:          model.BankTransaction{Date: day(2025, 1, 2), Description: "Refund", Amount: decimal.NewFromInt(20), Currency: "USD"},
			wantCounter: "Income:Uncategorized",
			wantCur:     "USD",
		},
		{
			name:        "category trimmed",
			bt:          model.BankTransaction{Date: day(2025, 1, 2), Description: "Lunch", Amount: decimal.NewFromInt(-9), Category: " Expenses : Food "},
			wantCounter: "Expenses:Food",
			wantCur:     "INR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := ToTransaction(tt.bt, opts)
			require.NoError(t, err)
			require.Len(t, txn.Postings, 2)
			assert.Equal(t, model.FlagCleared, txn.Flag)
			assert.Equal(t, "Assets:Bank:Checking", txn.Postings[0].Account)
			assert.Equal(t, tt.wantCur, txn.Postings[0].Amount.Currency)
			assert.True(t, txn.Postings[0].Amount.Number.Equal(tt.bt.Amount))
			assert.Equal(t, tt.wantCounter, txn.Postings[1].Account)
			assert.True(t, txn.Postings[1].Elided())

			balanced, err := journal.BalanceTransaction(txn, journal.DefaultTolerance())
			require.NoError(t, err)
			assert.True(t, balanced.Postings[1].Amount.Number.Equal(tt.bt.Amount.Neg()))
		})
	}
}

func TestToTransaction_Errors(t *testing.T) {
	_, err := ToTransaction(model.BankTransaction{Description: "x", Amount: decimal.NewFromInt(1)}, Options{Account: "Assets:Cash"})
	assert.ErrorContains(t, err, "no currency")

	_, err = ToTransaction(model.BankTransaction{Description: "x", Amount: decimal.NewFromInt(1), Category: "Food"},
		Options{Account: "Assets:Cash", Currency: "INR"})
	assert.ErrorIs(t, err, namespace.ErrInvalidAccountName)
}

func newJournal(t *testing.T) *journal.Service {
	t.Helper()
	chart := accounts.NewService(accounts.DefaultChart(day(2020, 1, 1), "USD"))
	_, err := chart.Add(model.Account{Name: "Expenses:Software", OpenDate: day(2020, 1, 1)})
	require.NoError(t, err)
	return journal.NewService(t.TempDir(), journal.NewValidator(chart))
}

func TestImporter_Import(t *testing.T) {
	data, err := os.Open("testdata/chase_checking.csv")
	require.NoError(t, err)
	defer data.Close()

	rows, err := (&ChaseParser{}).Parse(data)
	require.NoError(t, err)
	rows[0].Category = "Expenses:Software"

	j := newJournal(t)
	im := New(j, nil)
	opts := Options{Account: "Assets:Bank:Checking"}

	res, err := im.Import(rows, opts)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Imported, 6)
	assert.Equal(t, "2025-01-001", res.Imported[0].ID)
	assert.Equal(t, "Expenses:Software", res.Imported[0].Postings[1].Account)
	assert.True(t, res.Imported[0].Postings[1].Inferred)

	balances, err := j.CurrentBalances()
	require.NoError(t, err)
	assert.Equal(t, "3314.13", balances["Assets:Bank:Checking"].Number.StringFixed(2))
	assert.Equal(t, "-3500.00", balances["Income:Uncategorized"].Number.StringFixed(2))

	// second run finds everything already present
	res, err = im.Import(rows, opts)
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
	assert.Equal(t, 6, res.Duplicates)
}

func TestImporter_RowErrorsDoNotStopRun(t *testing.T) {
	j := newJournal(t)
	rows := []model.BankTransaction{
		{Date: day(2025, 2, 1), Description: "Unknown category", Amount: decimal.NewFromInt(-5), Category: "Expenses:Nope"},
		{Date: day(2025, 2, 2), Description: "Coffee", Amount: decimal.NewFromInt(-3)},
	}

	res, err := New(j, nil).Import(rows, Options{Account: "Assets:Cash", Currency: "USD"})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], journal.ErrUnknownAccount)
	assert.ErrorContains(t, res.Errors[0], "row 1")
	assert.Len(t, res.Imported, 1)
}

func TestImporter_RepeatedRowsInOneFile(t *testing.T) {
	j := newJournal(t)
	coffee := model.BankTransaction{Date: day(2025, 3, 4), Description: "Coffee", Amount: decimal.NewFromInt(-3)}
	rows := []model.BankTransaction{coffee, coffee}
	opts := Options{Account: "Assets:Cash", Currency: "USD"}

	res, err := New(j, nil).Import(rows, opts)
	require.NoError(t, err)
	assert.Len(t, res.Imported, 2)
	assert.Zero(t, res.Duplicates)

	// a longer export overlapping the first keeps only the new third coffee
	res, err = New(j, nil).Import(append(rows, coffee), opts)
	require.NoError(t, err)
	assert.Len(t, res.Imported, 1)
	assert.Equal(t, 2, res.Duplicates)

	balances, err := j.CurrentBalances()
	require.NoError(t, err)
	assert.Equal(t, "-9", balances["Assets:Cash"].Number.String())
}

func TestImporter_KeepsReference(t *testing.T) {
	j := newJournal(t)
	rows := []model.BankTransaction{
		{Date: day(2025, 3, 5), Description: "Deposit", Amount: decimal.NewFromInt(40), Reference: "chase-20250305-DEPOSIT"},
	}
	_, err := New(j, nil).Import(rows, Options{Account: "Assets:Cash", Currency: "USD"})
	require.NoError(t, err)

	txns, err := j.ReadMonth(2025, 3)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "chase-20250305-DEPOSIT", txns[0].Metadata["ref"])
}
