package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank CSV row.
type BankTransaction struct {
	Date        time.Time
	Payee       string
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Currency    string          // empty means the importing account's currency
	Category    string          // counter account, when the export names one
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}
