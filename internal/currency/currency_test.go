package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
		amount  model.Amount
		want    string
	}{
		{"usd", false, model.MustAmount("1234.5", "USD"), "$1,234.50"},
		{"usd negative", false, model.MustAmount("-5", "USD"), "-$5.00"},
		{"usd rounds", false, model.MustAmount("0.129", "USD"), "$0.13"},
		{"inr small", true, model.MustAmount("12345.6", "INR"), "₹12,345.60"},
		{"inr lakh", true, model.MustAmount("250000", "INR"), "₹2.50 L"},
		{"inr crore", true, model.MustAmount("12500000", "INR"), "₹1.25 Cr"},
		{"inr negative lakh", true, model.MustAmount("-100000", "INR"), "-₹1.00 L"},
		{"inr not compact", false, model.MustAmount("250000", "INR"), "₹250,000.00"},
		{"lowercase code", false, model.MustAmount("1", "usd"), "$1.00"},
		{"unknown code", false, model.MustAmount("7.5", "ZZZ"), "7.50 ZZZ"},
		{"unknown code grouped", false, model.MustAmount("1234.5", "ZZZ"), "1,234.50 ZZZ"},
		{"no currency", false, model.Amount{Number: decimal.NewFromInt(3)}, "3.00"},
		{"unknown code negative", false, model.MustAmount("-1234567.891", "ZZZ"), "-1,234,567.89 ZZZ"},
		{"unknown code exact beyond float", false, model.MustAmount("12345678901234567890.12", "ZZZ"), "12,345,678,901,234,567,890.12 ZZZ"},
		{"unknown code rounds to zero", false, model.MustAmount("-0.001", "ZZZ"), "0.00 ZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(WithCompact(tt.compact))
			assert.Equal(t, tt.want, f.Format(tt.amount))
		})
	}
}

func TestFormat_LocaleSeparators(t *testing.T) {
	f := NewFormatter(WithLocale(language.German))
	assert.Equal(t, "1.234.567,25 ZZZ", f.Format(model.MustAmount("1234567.25", "ZZZ")))
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "₹", Symbol("INR"))
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "ZZZ", Symbol("ZZZ"))
	assert.True(t, Known("eur"))
	assert.False(t, Known("ZZZ"))
}
