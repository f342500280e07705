package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ChaseParser reads Chase checking exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type ChaseParser struct{}

const (
	chaseFields = 7
	chaseDate   = 1
	chaseDesc   = 2
	chaseAmount = 3
	chaseType   = 4
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Matches recognizes the Chase header row.
func (p *ChaseParser) Matches(header []string) bool {
	return len(header) == chaseFields &&
		strings.EqualFold(strings.TrimSpace(header[0]), "Details") &&
		strings.EqualFold(strings.TrimSpace(header[chaseDate]), "Posting Date")
}

// Parse reads a Chase export. Amounts are USD; debits are negative.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	records, err := readRows(r, chaseFields)
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	var rows []model.BankTransaction
	for i := 1; i < len(records); i++ {
		bt, err := chaseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, bt)
	}
	return rows, nil
}

func chaseRow(rec []string) (model.BankTransaction, error) {
	date, err := time.Parse("01/02/2006", rec[chaseDate])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseDate], err)
	}
	amount, err := decimal.NewFromString(rec[chaseAmount])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseAmount], err)
	}

	desc := strings.TrimSpace(rec[chaseDesc])
	return model.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Currency:    "USD",
		Reference:   chaseReference(date, desc),
		Type:        rec[chaseType],
	}, nil
}

// chaseReference builds an ID like chase-20250103-GITHUBPRO from the date and
// the first ten alphanumerics of the description.
func chaseReference(date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return "chase-" + date.Format("20060102") + "-" + b.String()
}
