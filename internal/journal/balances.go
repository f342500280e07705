package journal

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Inventory holds the units each account holds, per currency.
type Inventory map[string]map[string]decimal.Decimal

// BuildInventory sums posting amounts per account and currency for every
// transaction dated on or before asOf. A zero asOf includes everything.
// Elided postings are skipped; balance them first.
func BuildInventory(txns []model.Transaction, asOf time.Time) Inventory {
	inv := make(Inventory)
	for _, txn := range txns {
		if !asOf.IsZero() && txn.Date.After(asOf) {
			continue
		}
		for _, p := range txn.Postings {
			if p.Amount == nil {
				continue
			}
			if inv[p.Account] == nil {
				inv[p.Account] = make(map[string]decimal.Decimal)
			}
			inv[p.Account][p.Amount.Currency] = inv[p.Account][p.Amount.Currency].Add(p.Amount.Number)
		}
	}
	return inv
}

// Surface reduces the inventory to a single amount per account. When an
// account holds several currencies, preferred wins if present, otherwise the
// first currency in sort order; such accounts are returned in mixed.
func (inv Inventory) Surface(preferred string) (balances map[string]model.Amount, mixed []string) {
	balances = make(map[string]model.Amount, len(inv))
	for _, account := range inv.accounts() {
		holdings := inv[account]
		currencies := sortedCurrencies(holdings)
		if len(currencies) == 0 {
			continue
		}
		cur := currencies[0]
		if len(currencies) > 1 {
			mixed = append(mixed, account)
			if _, ok := holdings[preferred]; ok {
				cur = preferred
			}
		}
		balances[account] = model.Amount{Number: holdings[cur], Currency: cur}
	}
	return balances, mixed
}

func (inv Inventory) accounts() []string {
	out := make([]string, 0, len(inv))
	for a := range inv {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
