package model

import "time"

// AccountType is the root category an account belongs to.
type AccountType string

const (
	AccountTypeAssets      AccountType = "Assets"
	AccountTypeLiabilities AccountType = "Liabilities"
	AccountTypeEquity      AccountType = "Equity"
	AccountTypeIncome      AccountType = "Income"
	AccountTypeExpenses    AccountType = "Expenses"
)

// AccountTypes lists the five root categories in balance-sheet order.
var AccountTypes = []AccountType{
	AccountTypeAssets,
	AccountTypeLiabilities,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpenses,
}

// Valid reports whether t is one of the five root categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAssets, AccountTypeLiabilities, AccountTypeEquity, AccountTypeIncome, AccountTypeExpenses:
		return true
	}
	return false
}

// Account is a declared account in the ledger, e.g. "Assets:Bank:Checking".
type Account struct {
	Name      string
	Type      AccountType
	OpenDate  time.Time
	CloseDate *time.Time // nil while open
	Metadata  map[string]string
}

// IsClosed reports whether the account has a close date.
func (a Account) IsClosed() bool {
	return a.CloseDate != nil
}

// IsOpen reports whether postings dated on date may use the account.
// Postings on the close date itself are still allowed.
func (a Account) IsOpen(date time.Time) bool {
	if date.Before(a.OpenDate) {
		return false
	}
	if a.CloseDate != nil && date.After(*a.CloseDate) {
		return false
	}
	return true
}
