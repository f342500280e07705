package tree

import (
	"fmt"
	"sort"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// AccountLister supplies the declared accounts.
type AccountLister interface {
	List() ([]model.Account, error)
}

// BalanceSource supplies one current balance per account name.
type BalanceSource interface {
	CurrentBalances() (map[string]model.Amount, error)
}

// FromSources loads accounts and balances and builds a forest from them.
func FromSources(lister AccountLister, source BalanceSource, opts ...Option) (*Forest, error) {
	accounts, err := lister.List()
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	balances, err := source.CurrentBalances()
	if err != nil {
		return nil, fmt.Errorf("loading balances: %w", err)
	}
	return Build(accounts, balances, opts...), nil
}

// BalanceMap keys balances by account. When an account appears more than
// once, the latest-dated entry wins; ties keep the later entry.
func BalanceMap(balances []model.Balance) map[string]model.Amount {
	sorted := make([]model.Balance, len(balances))
	copy(sorted, balances)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make(map[string]model.Amount, len(sorted))
	for _, b := range sorted {
		out[b.Account] = b.Amount
	}
	return out
}
