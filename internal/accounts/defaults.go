package accounts

import (
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// DefaultChart returns the starter chart of accounts for a new workspace,
// all opened on openDate and denominated in currency.
func DefaultChart(openDate time.Time, currency string) []model.Account {
	open := func(name string, typ model.AccountType) model.Account {
		return model.Account{
			Name:     name,
			Type:     typ,
			OpenDate: openDate,
			Metadata: map[string]string{"currency": currency},
		}
	}
	return []model.Account{
		open("Assets:Bank:Checking", model.AccountTypeAssets),
		open("Assets:Bank:Savings", model.AccountTypeAssets),
		open("Assets:Cash", model.AccountTypeAssets),
		open("Liabilities:CreditCard", model.AccountTypeLiabilities),
		open("Equity:Opening-Balances", model.AccountTypeEquity),
		open("Income:Salary", model.AccountTypeIncome),
		open("Income:Interest", model.AccountTypeIncome),
		open("Income:Uncategorized", model.AccountTypeIncome),
		open("Expenses:Food", model.AccountTypeExpenses),
		open("Expenses:Housing:Rent", model.AccountTypeExpenses),
		open("Expenses:Transport", model.AccountTypeExpenses),
		open("Expenses:Utilities", model.AccountTypeExpenses),
		open("Expenses:Uncategorized", model.AccountTypeExpenses),
	}
}
