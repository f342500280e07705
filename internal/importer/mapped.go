package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Mapping names the CSV header for each field. Empty optional columns are
// ignored.
type Mapping struct {
	Date      string
	Narration string
	Amount    string
	Payee     string
	Currency  string
	Category  string
	Reference string
}

// DefaultMapping matches the generic "Date,Payee,Narration,Amount,Currency,Category" export.
func DefaultMapping() Mapping {
	return Mapping{
		Date:      "Date",
		Narration: "Narration",
		Amount:    "Amount",
		Payee:     "Payee",
		Currency:  "Currency",
		Category:  "Category",
	}
}

// MappedParser reads any CSV whose columns are named by a Mapping.
type MappedParser struct {
	mapping Mapping
}

// NewMappedParser creates a parser for m.
func NewMappedParser(m Mapping) *MappedParser {
	return &MappedParser{mapping: m}
}

// Format returns the parser name.
func (p *MappedParser) Format() string { return "mapped" }

// dateLayouts are tried in order. Slash dates are day first.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-Jan-2006"}

// Matches reports whether header carries the mapping's required columns.
func (p *MappedParser) Matches(header []string) bool {
	_, err := p.columns(header)
	return err == nil
}

// Parse reads the CSV and returns BankTransactions.
func (p *MappedParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	records, err := readRows(r, 0)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if records == nil {
		return nil, nil
	}

	cols, err := p.columns(records[0])
	if err != nil {
		return nil, err
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := parseMappedRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

type columnIndex struct {
	date, narration, amount        int
	payee, currency, category, ref int // -1 when absent
}

func (p *MappedParser) columns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		date:      find(p.mapping.Date),
		narration: find(p.mapping.Narration),
		amount:    find(p.mapping.Amount),
		payee:     find(p.mapping.Payee),
		currency:  find(p.mapping.Currency),
		category:  find(p.mapping.Category),
		ref:       find(p.mapping.Reference),
	}
	var missing []string
	if idx.date < 0 {
		missing = append(missing, p.mapping.Date)
	}
	if idx.narration < 0 {
		missing = append(missing, p.mapping.Narration)
	}
	if idx.amount < 0 {
		missing = append(missing, p.mapping.Amount)
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseMappedRow(rec []string, cols columnIndex) (model.BankTransaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	dateStr := field(cols.date)
	date, err := parseDate(dateStr)
	if err != nil {
		return model.BankTransaction{}, err
	}

	amountStr := strings.NewReplacer(",", "", "₹", "", "$", "", "€", "", "£", "").Replace(field(cols.amount))
	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", field(cols.amount), err)
	}

	narration := field(cols.narration)
	if narration == "" {
		return model.BankTransaction{}, fmt.Errorf("narration is empty")
	}

	return model.BankTransaction{
		Date:        date,
		Payee:       field(cols.payee),
		Description: narration,
		Amount:      amount,
		Currency:    strings.ToUpper(field(cols.currency)),
		Category:    field(cols.category),
		Reference:   field(cols.ref),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: expected YYYY-MM-DD or DD/MM/YYYY", s)
}
