package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Flag is the clearing state of a transaction.
type Flag string

const (
	FlagCleared Flag = "*"
	FlagPending Flag = "!"
)

// Amount is an exact decimal quantity of a currency or commodity.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// ParseAmount builds an Amount from a decimal string.
func ParseAmount(number, currency string) (Amount, error) {
	d, err := decimal.NewFromString(number)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", number, err)
	}
	return Amount{Number: d, Currency: currency}, nil
}

// MustAmount is like ParseAmount but panics on error. Intended for tests and literals.
func MustAmount(number, currency string) Amount {
	a, err := ParseAmount(number, currency)
	if err != nil {
		panic(err)
	}
	return a
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// Cost is the per-unit acquisition cost of a lot held at cost.
type Cost struct {
	Number   decimal.Decimal
	Currency string
	Date     *time.Time
	Label    string
}

// Price is a per-unit conversion price attached to a posting.
type Price struct {
	Number   decimal.Decimal
	Currency string
	Date     *time.Time
}

// Posting is one leg of a transaction. A nil Amount means the amount is
// elided and must be inferred from the other postings.
type Posting struct {
	Account  string
	Amount   *Amount
	Cost     *Cost
	Price    *Price
	Metadata map[string]string
	Inferred bool // Amount was filled in by balancing
}

// Elided reports whether the posting has no amount.
func (p Posting) Elided() bool {
	return p.Amount == nil
}

// Transaction is a dated, balanced set of postings.
type Transaction struct {
	ID        string
	Date      time.Time
	Flag      Flag
	Payee     string
	Narration string
	Postings  []Posting
	Metadata  map[string]string
}

// Clone returns a copy whose postings slice can be modified independently.
func (t Transaction) Clone() Transaction {
	c := t
	c.Postings = make([]Posting, len(t.Postings))
	copy(c.Postings, t.Postings)
	for i, p := range c.Postings {
		if p.Amount != nil {
			amt := *p.Amount
			c.Postings[i].Amount = &amt
		}
	}
	return c
}

// Balance is an account's resolved amount as of a date.
type Balance struct {
	Account string
	Date    time.Time
	Amount  Amount
}
