package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func amt(number, currency string) *model.Amount {
	a := model.MustAmount(number, currency)
	return &a
}

func posting(account, number, currency string) model.Posting {
	return model.Posting{Account: account, Amount: amt(number, currency)}
}

func elided(account string) model.Posting {
	return model.Posting{Account: account}
}

type mockAccounts map[string]model.Account

func newMockAccounts(names ...string) mockAccounts {
	m := make(mockAccounts, len(names))
	for _, n := range names {
		m[n] = model.Account{Name: n, OpenDate: date(2020, 1, 1)}
	}
	return m
}

func (m mockAccounts) Lookup(name string) (model.Account, bool) {
	a, ok := m[name]
	return a, ok
}
