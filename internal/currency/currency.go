// Package currency renders amounts for display.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

var (
	lakh  = decimal.NewFromInt(100_000)
	crore = decimal.NewFromInt(10_000_000)
)

// Formatter renders amounts using each currency's symbol, grouping and minor
// units. With compact output, rupee amounts of a lakh or more are shortened
// to "₹12.50 L" and "₹1.20 Cr".
type Formatter struct {
	compact bool
	printer *message.Printer
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithCompact enables lakh/crore abbreviations for INR.
func WithCompact(compact bool) Option {
	return func(f *Formatter) { f.compact = compact }
}

// WithLocale sets the locale used for currencies go-money does not know.
func WithLocale(tag language.Tag) Option {
	return func(f *Formatter) { f.printer = message.NewPrinter(tag) }
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{printer: message.NewPrinter(language.English)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders amount, e.g. "$1,234.50" or "₹3.25 L".
func (f *Formatter) Format(amount model.Amount) string {
	return f.FormatNumber(amount.Number, amount.Currency)
}

// FormatNumber renders n in the currency with the given ISO code. Unknown
// codes fall back to locale grouping, e.g. "1,234.50 XYZ".
func (f *Formatter) FormatNumber(n decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	cur := money.GetCurrency(code)
	if cur == nil {
		s := f.plain(n)
		if code == "" {
			return s
		}
		return s + " " + code
	}

	if f.compact && code == "INR" {
		if s, ok := compactRupees(n, cur.Grapheme); ok {
			return s
		}
	}

	minor := n.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// plain renders n to two places with the locale's separators. The digits
// come from the decimal itself so large values stay exact.
func (f *Formatter) plain(n decimal.Decimal) string {
	group, point := f.separators()
	digits := n.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if n.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// separators reads the grouping and decimal marks off a sample number
// formatted for the locale.
func (f *Formatter) separators() (group, point string) {
	sample := f.printer.Sprint(number.Decimal(1234.5, number.Scale(1)))
	i := strings.Index(sample, "234")
	j := strings.LastIndex(sample, "5")
	if !strings.HasPrefix(sample, "1") || i < 1 || j < i+3 {
		return ",", "."
	}
	return sample[1:i], sample[i+3 : j]
}

func compactRupees(n decimal.Decimal, grapheme string) (string, bool) {
	abs := n.Abs()
	sign := ""
	if n.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(crore):
		return sign + grapheme + abs.Div(crore).StringFixed(2) + " Cr", true
	case abs.GreaterThanOrEqual(lakh):
		return sign + grapheme + abs.Div(lakh).StringFixed(2) + " L", true
	default:
		return "", false
	}
}

// Symbol returns the currency's grapheme, or the code itself when unknown.
func Symbol(code string) string {
	if cur := money.GetCurrency(strings.ToUpper(code)); cur != nil && cur.Grapheme != "" {
		return cur.Grapheme
	}
	return code
}

// Known reports whether code is an ISO 4217 currency known to the formatter.
func Known(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}
