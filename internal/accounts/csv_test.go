package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestRoundTrip(t *testing.T) {
	closed := date(2025, 6, 30)
	accounts := []model.Account{
		{Name: "Assets:Bank:Checking", Type: model.AccountTypeAssets, OpenDate: date(2024, 4, 1),
			Metadata: map[string]string{"currency": "INR", "bank": "HDFC"}},
		{Name: "Liabilities:Card", Type: model.AccountTypeLiabilities, OpenDate: date(2024, 4, 1), CloseDate: &closed},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))
	assert.Contains(t, buf.String(), "bank=HDFC;currency=INR")

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts[0].Name, got[0].Name)
	assert.Equal(t, accounts[0].Metadata, got[0].Metadata)
	assert.Nil(t, got[0].CloseDate)
	assert.Nil(t, got[1].Metadata)
	require.NotNil(t, got[1].CloseDate)
	assert.True(t, got[1].CloseDate.Equal(closed))
}

func TestReadAccounts_BadRows(t *testing.T) {
	header := "name,type,open_date,close_date,metadata\n"
	tests := []struct {
		name string
		row  string
	}{
		{"bad open date", "Assets:Cash,Assets,2024-99-01,,\n"},
		{"bad close date", "Assets:Cash,Assets,2024-01-01,nope,\n"},
		{"bad metadata", "Assets:Cash,Assets,2024-01-01,,currency\n"},
		{"missing fields", "Assets:Cash,Assets\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(header + tt.row))
			assert.Error(t, err)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart(date(2024, 4, 1), "USD")
	require.NotEmpty(t, chart)

	seen := make(map[model.AccountType]bool)
	for _, a := range chart {
		seen[a.Type] = true
		assert.True(t, strings.HasPrefix(a.Name, string(a.Type)+":"), a.Name)
		assert.Equal(t, "USD", a.Metadata["currency"])
	}
	for _, typ := range model.AccountTypes {
		assert.True(t, seen[typ], "chart should cover %s", typ)
	}
}
