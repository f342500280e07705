package journal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

var (
	// ErrImbalance matches every *ImbalanceError.
	ErrImbalance = errors.New("journal: transaction does not balance")
	// ErrAmbiguousElision indicates more than one posting without an amount.
	ErrAmbiguousElision = errors.New("journal: more than one posting has an elided amount")
	// ErrUninferableElision indicates an elided posting with nothing to balance against.
	ErrUninferableElision = errors.New("journal: cannot infer elided amount without other amounts")
	// ErrTooFewPostings indicates a transaction with fewer than two postings.
	ErrTooFewPostings = errors.New("journal: transaction requires at least two postings")
)

// ImbalanceError reports the currency that failed to net to zero and by how much.
type ImbalanceError struct {
	Currency string
	Residual decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("%v: %s %s left over", ErrImbalance, e.Residual.String(), e.Currency)
}

func (e *ImbalanceError) Is(target error) bool {
	return target == ErrImbalance
}

// BalanceTransaction checks that txn nets to zero in every currency within
// tol. If exactly one posting is elided, it receives the negated residual and
// is marked Inferred in the returned copy. txn itself is never modified.
func BalanceTransaction(txn model.Transaction, tol Tolerance) (model.Transaction, error) {
	elided := -1
	for i, p := range txn.Postings {
		if !p.Elided() {
			continue
		}
		if elided >= 0 {
			return model.Transaction{}, fmt.Errorf("%w: postings %d and %d", ErrAmbiguousElision, elided+1, i+1)
		}
		elided = i
	}

	out := txn.Clone()
	net := NetPostings(out)

	if elided >= 0 && len(net) == 0 {
		return model.Transaction{}, ErrUninferableElision
	}
	if len(txn.Postings) < 2 {
		return model.Transaction{}, fmt.Errorf("%w: got %d", ErrTooFewPostings, len(txn.Postings))
	}

	if elided >= 0 {
		currencies := sortedCurrencies(net)
		currency := currencies[0]
		for _, c := range currencies {
			if !tol.Within(net[c], c) {
				currency = c
				break
			}
		}
		out.Postings[elided].Amount = &model.Amount{Number: net[currency].Neg(), Currency: currency}
		out.Postings[elided].Inferred = true
		net = NetPostings(out)
	}

	for _, c := range sortedCurrencies(net) {
		if !tol.Within(net[c], c) {
			return model.Transaction{}, &ImbalanceError{Currency: c, Residual: net[c]}
		}
	}
	return out, nil
}
