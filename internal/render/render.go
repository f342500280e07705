// Package render draws account trees as aligned, indented text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/cleared-dev/ledgerbook/internal/currency"
	"github.com/cleared-dev/ledgerbook/internal/tree"
)

const indent = "  "

// TreeOptions controls Tree output.
type TreeOptions struct {
	HideZero bool // skip subtrees whose rolled-up balance is zero
	MaxDepth int  // 0 shows every level
}

type styles struct {
	root     lipgloss.Style
	folder   lipgloss.Style
	account  lipgloss.Style
	negative lipgloss.Style
	closed   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		root:     r.NewStyle().Bold(true),
		folder:   r.NewStyle().Faint(true),
		account:  r.NewStyle(),
		negative: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}),
		closed:   r.NewStyle().Strikethrough(true),
	}
}

type line struct {
	label  string
	amount string
	node   *tree.Node
}

// Tree writes every node of f, one per line, with the balance column aligned
// to the widest label.
func Tree(w io.Writer, f *tree.Forest, fmtr *currency.Formatter, opts TreeOptions) error {
	var lines []line
	f.Walk(func(n *tree.Node) bool {
		if opts.MaxDepth > 0 && n.Level >= opts.MaxDepth {
			return false
		}
		if opts.HideZero && n.Balance.IsZero() {
			return false
		}
		lines = append(lines, line{
			label:  strings.Repeat(indent, n.Level) + n.Name,
			amount: fmtr.FormatNumber(n.Balance, n.Currency),
			node:   n,
		})
		return true
	})

	labelWidth, amountWidth := 0, 0
	for _, l := range lines {
		labelWidth = max(labelWidth, runewidth.StringWidth(l.label))
		amountWidth = max(amountWidth, runewidth.StringWidth(l.amount))
	}

	st := newStyles(w)
	for _, l := range lines {
		label := runewidth.FillRight(l.label, labelWidth)
		amount := runewidth.FillLeft(l.amount, amountWidth)

		switch {
		case l.node.Level == 0:
			label = st.root.Render(label)
		case l.node.Account == nil:
			label = st.folder.Render(label)
		case l.node.Account.IsClosed():
			label = st.closed.Render(label)
		default:
			label = st.account.Render(label)
		}
		if l.node.Balance.IsNegative() {
			amount = st.negative.Render(amount)
		}

		if _, err := fmt.Fprintf(w, "%s  %s\n", label, amount); err != nil {
			return err
		}
	}
	return nil
}

// Warnings writes non-fatal build warnings, one per line.
func Warnings(w io.Writer, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}
	st := lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"})
	for _, msg := range warnings {
		if _, err := fmt.Fprintln(w, st.Render("! "+msg)); err != nil {
			return err
		}
	}
	return nil
}
