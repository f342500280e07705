package journal

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// weight is what a posting contributes to its transaction's balance.
type weight struct {
	Amount   decimal.Decimal
	Currency string
}

// postingWeight resolves the effective signed amount of a posting. A cost
// takes precedence over a price; with neither, the posting amount itself
// is the weight. Elided postings contribute nothing.
func postingWeight(p model.Posting) (weight, bool) {
	if p.Amount == nil {
		return weight{}, false
	}
	units := p.Amount.Number

	switch {
	case p.Inferred:
		return weight{Amount: units, Currency: p.Amount.Currency}, true
	case p.Cost != nil:
		return weight{Amount: units.Mul(p.Cost.Number), Currency: p.Cost.Currency}, true
	case p.Price != nil:
		return weight{Amount: units.Mul(p.Price.Number), Currency: p.Price.Currency}, true
	default:
		return weight{Amount: units, Currency: p.Amount.Currency}, true
	}
}

// NetPostings sums posting weights per currency.
func NetPostings(txn model.Transaction) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, p := range txn.Postings {
		w, ok := postingWeight(p)
		if !ok {
			continue
		}
		net[w.Currency] = net[w.Currency].Add(w.Amount)
	}
	return net
}

func sortedCurrencies(net map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(net))
	for c := range net {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Tolerance bounds the residual a currency may leave after balancing.
type Tolerance struct {
	Default     decimal.Decimal
	PerCurrency map[string]decimal.Decimal
}

// DefaultTolerance is 0.00001 for every currency.
func DefaultTolerance() Tolerance {
	return Tolerance{Default: decimal.New(1, -5)}
}

// For returns the tolerance applied to currency.
func (t Tolerance) For(currency string) decimal.Decimal {
	if tol, ok := t.PerCurrency[currency]; ok {
		return tol
	}
	if tol, ok := t.PerCurrency["*"]; ok {
		return tol
	}
	return t.Default
}

// Within reports whether residual is small enough to count as zero.
func (t Tolerance) Within(residual decimal.Decimal, currency string) bool {
	return residual.Abs().LessThanOrEqual(t.For(currency))
}
