package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccountIsOpen(t *testing.T) {
	closed := day(2024, 6, 30)
	acct := Account{Name: "Assets:Cash", Type: AccountTypeAssets, OpenDate: day(2024, 1, 1), CloseDate: &closed}

	assert.False(t, acct.IsOpen(day(2023, 12, 31)))
	assert.True(t, acct.IsOpen(day(2024, 1, 1)))
	assert.True(t, acct.IsOpen(day(2024, 6, 30)), "close date itself is still open")
	assert.False(t, acct.IsOpen(day(2024, 7, 1)))
	assert.True(t, acct.IsClosed())
}

func TestAccountTypeValid(t *testing.T) {
	for _, typ := range AccountTypes {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, AccountType("Revenue").Valid())
	assert.False(t, AccountType("assets").Valid())
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("100.10", "INR")
	require.NoError(t, err)
	assert.Equal(t, "100.1 INR", a.String())
	assert.Equal(t, "-100.1 INR", a.Neg().String())

	_, err = ParseAmount("ten", "INR")
	require.Error(t, err)
}

func TestTransactionClone(t *testing.T) {
	amt := MustAmount("5", "USD")
	txn := Transaction{Postings: []Posting{{Account: "Assets:Cash", Amount: &amt}, {Account: "Expenses:Food"}}}

	c := txn.Clone()
	c.Postings[0].Amount.Number = c.Postings[0].Amount.Number.Neg()
	c.Postings[1].Inferred = true

	assert.Equal(t, "5", txn.Postings[0].Amount.Number.String())
	assert.False(t, txn.Postings[1].Inferred)
	assert.True(t, txn.Postings[1].Elided())
}

func TestMetadataEncoding(t *testing.T) {
	md := map[string]string{"ref": "chase-1", "bank": "HDFC"}
	assert.Equal(t, "bank=HDFC;ref=chase-1", FormatMetadata(md))

	got, err := ParseMetadata(FormatMetadata(md))
	require.NoError(t, err)
	assert.Equal(t, md, got)

	got, err = ParseMetadata("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseMetadata("ref")
	assert.Error(t, err)
	assert.Empty(t, FormatMetadata(nil))
}
