package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/cleared-dev/ledgerbook/internal/currency"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Transactions writes each transaction as a heading line followed by its
// postings, indented, with amounts right-aligned across the whole listing.
// Elided postings show a blank amount and inferred ones are marked.
func Transactions(w io.Writer, txns []model.Transaction, fmtr *currency.Formatter) error {
	accountWidth, amountWidth := 0, 0
	for _, txn := range txns {
		for _, p := range txn.Postings {
			accountWidth = max(accountWidth, runewidth.StringWidth(p.Account))
			if p.Amount != nil {
				amountWidth = max(amountWidth, runewidth.StringWidth(fmtr.Format(*p.Amount)))
			}
		}
	}

	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	pending := r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"})
	faint := r.NewStyle().Faint(true)
	negative := r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"})

	for _, txn := range txns {
		flag := string(txn.Flag)
		if txn.Flag == model.FlagPending {
			flag = pending.Render(flag)
		}
		if _, err := fmt.Fprintf(w, "%s %s %s%s\n", heading.Render(txn.ID), txn.Date.Format(time.DateOnly), flag, describe(txn)); err != nil {
			return err
		}

		for _, p := range txn.Postings {
			account := runewidth.FillRight(p.Account, accountWidth)
			amount := strings.Repeat(" ", amountWidth)
			if p.Amount != nil {
				amount = runewidth.FillLeft(fmtr.Format(*p.Amount), amountWidth)
				if p.Amount.Number.IsNegative() {
					amount = negative.Render(amount)
				}
			}
			line := indent + account + "  " + amount
			if p.Inferred {
				line += faint.Render(" (inferred)")
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(txn model.Transaction) string {
	var b strings.Builder
	if txn.Payee != "" {
		b.WriteString(" " + strconv.Quote(txn.Payee))
	}
	if txn.Narration != "" {
		b.WriteString(" " + strconv.Quote(txn.Narration))
	}
	return b.String()
}
