// Package report builds balance sheets and income statements from the
// declared accounts and the journal.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/currency"
	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
	"github.com/cleared-dev/ledgerbook/internal/render"
	"github.com/cleared-dev/ledgerbook/internal/tree"
)

// Section is one root category of a report.
type Section struct {
	Root  model.AccountType
	Total model.Amount
}

// Report is an aggregated statement over a subset of the root categories.
type Report struct {
	Title    string
	From     time.Time // zero for point-in-time reports
	To       time.Time
	Forest   *tree.Forest
	Sections []Section
	NetLabel string
	Net      model.Amount
	Mixed    []string // accounts holding more than one currency
}

// BalanceSheet reports Assets, Liabilities and Equity as of asOf. Net is
// assets plus liabilities, i.e. net worth under the ledger's sign convention.
func BalanceSheet(accounts []model.Account, txns []model.Transaction, asOf time.Time, operatingCurrency string) *Report {
	inv := journal.BuildInventory(txns, asOf)
	r := build(accounts, inv, operatingCurrency,
		model.AccountTypeAssets, model.AccountTypeLiabilities, model.AccountTypeEquity)

	r.Title = "Balance Sheet"
	r.To = asOf
	r.NetLabel = "Net Worth"
	r.Net = sum(operatingCurrency, r.Forest.Total(string(model.AccountTypeAssets)), r.Forest.Total(string(model.AccountTypeLiabilities)))
	return r
}

// IncomeStatement reports Income and Expenses for transactions within the
// period. Income carries negative balances, so Net is their negated sum.
func IncomeStatement(accounts []model.Account, txns []model.Transaction, period fiscal.Period, operatingCurrency string) *Report {
	var inPeriod []model.Transaction
	for _, txn := range txns {
		if period.Contains(txn.Date) {
			inPeriod = append(inPeriod, txn)
		}
	}

	inv := journal.BuildInventory(inPeriod, time.Time{})
	r := build(accounts, inv, operatingCurrency, model.AccountTypeIncome, model.AccountTypeExpenses)

	r.Title = "Income Statement " + period.String()
	r.From = period.Start
	r.To = period.End
	r.NetLabel = "Net Income"
	net := sum(operatingCurrency, r.Forest.Total(string(model.AccountTypeIncome)), r.Forest.Total(string(model.AccountTypeExpenses)))
	r.Net = net.Neg()
	return r
}

func build(accounts []model.Account, inv journal.Inventory, operatingCurrency string, roots ...model.AccountType) *Report {
	want := make(map[model.AccountType]bool, len(roots))
	for _, root := range roots {
		want[root] = true
	}

	var selected []model.Account
	for _, a := range accounts {
		root, err := namespace.RootCategory(a.Name)
		if err != nil || !want[root] {
			continue
		}
		selected = append(selected, a)
	}

	balances, mixed := inv.Surface(operatingCurrency)
	forest := tree.Build(selected, balances, tree.WithDefaultCurrency(operatingCurrency))

	r := &Report{Forest: forest, Mixed: mixed}
	for _, root := range roots {
		total := forest.Total(string(root))
		if total.Currency == "" {
			total.Currency = operatingCurrency
		}
		r.Sections = append(r.Sections, Section{Root: root, Total: total})
	}
	return r
}

func sum(currency string, amounts ...model.Amount) model.Amount {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Number)
	}
	return model.Amount{Number: total, Currency: currency}
}

// Write renders r as a titled tree followed by section totals and the net line.
func Write(w io.Writer, r *Report, fmtr *currency.Formatter) error {
	heading := r.Title
	if r.From.IsZero() {
		heading += " as of " + r.To.Format(time.DateOnly)
	} else {
		heading += fmt.Sprintf(" (%s to %s)", r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", heading); err != nil {
		return err
	}

	if err := render.Tree(w, r.Forest, fmtr, render.TreeOptions{}); err != nil {
		return err
	}
	if err := render.Warnings(w, r.Forest.Warnings); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, s := range r.Sections {
		if _, err := fmt.Fprintf(w, "Total %s: %s\n", s.Root, fmtr.Format(s.Total)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", r.NetLabel, fmtr.Format(r.Net))
	return err
}

// Summary is the at-a-glance position: what is owned, what is owed, and
// the latest activity.
type Summary struct {
	AsOf        time.Time
	Assets      model.Amount
	Liabilities model.Amount // amount owed, positive when in debt
	NetWorth    model.Amount
	Recent      []model.Transaction // newest first
	Mixed       []string
}

// NewSummary totals Assets and Liabilities as of asOf and keeps up to recent
// of the latest transactions on or before asOf. txns must be in date order,
// as journal.Service.All returns them.
func NewSummary(accounts []model.Account, txns []model.Transaction, asOf time.Time, operatingCurrency string, recent int) *Summary {
	r := BalanceSheet(accounts, txns, asOf, operatingCurrency)
	s := &Summary{
		AsOf:        asOf,
		Assets:      sum(operatingCurrency, r.Forest.Total(string(model.AccountTypeAssets))),
		Liabilities: sum(operatingCurrency, r.Forest.Total(string(model.AccountTypeLiabilities))).Neg(),
		NetWorth:    r.Net,
		Mixed:       r.Mixed,
	}

	for i := len(txns) - 1; i >= 0 && len(s.Recent) < recent; i-- {
		if !txns[i].Date.After(asOf) {
			s.Recent = append(s.Recent, txns[i])
		}
	}
	return s
}

// WriteSummary renders s as totals followed by the recent transactions.
func WriteSummary(w io.Writer, s *Summary, fmtr *currency.Formatter) error {
	if _, err := fmt.Fprintf(w, "Summary as of %s\n\n", s.AsOf.Format(time.DateOnly)); err != nil {
		return err
	}
	rows := []struct {
		label  string
		amount model.Amount
	}{
		{"Total Assets", s.Assets},
		{"Total Liabilities", s.Liabilities},
		{"Net Worth", s.NetWorth},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-18s %s\n", row.label+":", fmtr.Format(row.amount)); err != nil {
			return err
		}
	}

	if len(s.Recent) == 0 {
		_, err := fmt.Fprintln(w, "\nNo transactions yet")
		return err
	}
	if _, err := fmt.Fprintf(w, "\nRecent transactions\n"); err != nil {
		return err
	}
	return render.Transactions(w, s.Recent, fmtr)
}
