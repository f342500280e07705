// Package tree rolls per-account balances up the colon-delimited account
// namespace into a forest of category roots.
//
// A Forest is rebuilt from scratch on every call to Build. Nothing is cached,
// so concurrent builds over the same inputs are safe.
package tree

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

// Node is one segment of the account namespace. Nodes without an Account are
// folders implied by a longer declared name.
type Node struct {
	Name     string
	FullName string
	Account  *model.Account // nil for folders
	Children []*Node        // ordinal order by Name
	Level    int            // 0 for roots

	// Balance is the node's own balance plus every descendant's. Descendants
	// in a different currency are added numerically under Currency; no
	// exchange-rate conversion is applied, so mixed-currency subtrees are an
	// approximation for display only.
	Balance  decimal.Decimal
	Currency string
}

// Child returns the direct child with the given segment name.
func (n *Node) Child(segment string) *Node {
	i := sort.Search(len(n.Children), func(i int) bool { return n.Children[i].Name >= segment })
	if i < len(n.Children) && n.Children[i].Name == segment {
		return n.Children[i]
	}
	return nil
}

// Walk visits n and its descendants depth-first in display order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Amount returns the rolled-up balance as an Amount.
func (n *Node) Amount() model.Amount {
	return model.Amount{Number: n.Balance, Currency: n.Currency}
}

// Forest is the result of a Build: one root per first segment present.
type Forest struct {
	Roots    []*Node
	Warnings []string

	index map[string]*Node
}

// Find returns the node with the given full name, folder or account.
func (f *Forest) Find(fullName string) *Node {
	return f.index[fullName]
}

// Total returns the rolled-up balance of a root such as "Assets". A root not
// present in the forest totals zero.
func (f *Forest) Total(root string) model.Amount {
	if n := f.index[root]; n != nil && n.Level == 0 {
		return n.Amount()
	}
	return model.Amount{Number: decimal.Zero}
}

// Walk visits every root in order.
func (f *Forest) Walk(fn func(*Node) bool) {
	for _, r := range f.Roots {
		r.Walk(fn)
	}
}

type options struct {
	defaultCurrency string
}

// Option configures Build.
type Option func(*options)

// WithDefaultCurrency labels nodes whose subtree carries no currency at all.
func WithDefaultCurrency(code string) Option {
	return func(o *options) { o.defaultCurrency = code }
}

// Build arranges accounts into a forest and rolls balances up from each
// declared account to its ancestors. Only declared accounts are seeded from
// balances; folders start at zero. Names that fail to parse are skipped and
// reported in Warnings, as are repeated declarations after the first.
func Build(accounts []model.Account, balances map[string]model.Amount, opts ...Option) *Forest {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &Forest{index: make(map[string]*Node)}
	children := make(map[*Node]map[string]*Node)
	roots := make(map[string]*Node)

	for i := range accounts {
		acct := accounts[i]
		parts, err := namespace.ParsePath(acct.Name)
		if err != nil {
			f.Warnings = append(f.Warnings, fmt.Sprintf("skipping account: %v", err))
			continue
		}

		level := roots
		var node *Node
		for depth, seg := range parts {
			next, ok := level[seg]
			if !ok {
				next = &Node{Name: seg, FullName: namespace.Join(parts[:depth+1]...), Level: depth}
				level[seg] = next
				children[next] = make(map[string]*Node)
				f.index[next.FullName] = next
			}
			node = next
			level = children[node]
		}

		if node.Account != nil {
			f.Warnings = append(f.Warnings, fmt.Sprintf("duplicate declaration of %s ignored", node.FullName))
			continue
		}
		node.Account = &acct
	}

	f.Roots = sortedNodes(roots)
	for _, r := range f.Roots {
		rollup(r, children, balances, o)
	}
	return f
}

// rollup fills in n's children in order, then its balance, post-order. It
// returns the currency found in the subtree before any default is applied.
func rollup(n *Node, children map[*Node]map[string]*Node, balances map[string]model.Amount, o options) string {
	n.Children = sortedNodes(children[n])

	n.Balance = decimal.Zero
	var currency string
	if n.Account != nil {
		// balances may be keyed by the declared spelling or the trimmed one
		b, ok := balances[n.Account.Name]
		if !ok {
			b, ok = balances[n.FullName]
		}
		if ok {
			n.Balance = b.Number
			currency = b.Currency
		}
	}

	for _, c := range n.Children {
		found := rollup(c, children, balances, o)
		n.Balance = n.Balance.Add(c.Balance)
		if currency == "" {
			currency = found
		}
	}

	n.Currency = currency
	if n.Currency == "" {
		n.Currency = o.defaultCurrency
	}
	return currency
}

func sortedNodes(m map[string]*Node) []*Node {
	out := make([]*Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
