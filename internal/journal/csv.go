package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Header is the CSV header for journal.csv. Each row is one posting; rows of
// the same transaction are contiguous and share txn_id.
const Header = "txn_id,date,flag,payee,narration,account,number,currency,inferred,cost_number,cost_currency,cost_date,cost_label,price_number,price_currency,price_date,txn_meta,posting_meta"

const (
	numFields     = 18
	dateFormat    = "2006-01-02"
	colTxnID      = 0
	colDate       = 1
	colFlag       = 2
	colPayee      = 3
	colNarration  = 4
	colAccount    = 5
	colNumber     = 6
	colCurrency   = 7
	colInferred   = 8
	colCostNumber = 9
	colCostCur    = 10
	colCostDate   = 11
	colCostLabel  = 12
	colPriceNum   = 13
	colPriceCur   = 14
	colPriceDate  = 15
	colTxnMeta    = 16
	colPostMeta   = 17
)

// ReadTransactions reads all transactions from a journal.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, posting, err := UnmarshalPosting(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(txns); n > 0 && txns[n-1].ID == txn.ID {
			txns[n-1].Postings = append(txns[n-1].Postings, posting)
			continue
		}
		txn.Postings = []model.Posting{posting}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a journal.csv writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, txn := range txns {
		for j, p := range txn.Postings {
			if err := cw.Write(MarshalPosting(txn, p)); err != nil {
				return fmt.Errorf("writing %s posting %d: %w", txn.ID, j+1, err)
			}
		}
	}
	return cw.Error()
}

// AppendTransactions appends rows to an existing journal.csv writer (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, txn := range txns {
		for j, p := range txn.Postings {
			if err := cw.Write(MarshalPosting(txn, p)); err != nil {
				return fmt.Errorf("writing %s posting %d: %w", txn.ID, j+1, err)
			}
		}
	}
	return cw.Error()
}

// MarshalPosting converts one posting of txn to a CSV row.
func MarshalPosting(txn model.Transaction, p model.Posting) []string {
	row := make([]string, numFields)
	row[colTxnID] = txn.ID
	row[colDate] = txn.Date.Format(dateFormat)
	row[colFlag] = string(txn.Flag)
	row[colPayee] = txn.Payee
	row[colNarration] = txn.Narration
	row[colAccount] = p.Account
	row[colTxnMeta] = model.FormatMetadata(txn.Metadata)
	row[colPostMeta] = model.FormatMetadata(p.Metadata)

	if p.Amount != nil {
		row[colNumber] = p.Amount.Number.String()
		row[colCurrency] = p.Amount.Currency
	}
	if p.Inferred {
		row[colInferred] = "true"
	}
	if p.Cost != nil {
		row[colCostNumber] = p.Cost.Number.String()
		row[colCostCur] = p.Cost.Currency
		row[colCostDate] = formatOptionalDate(p.Cost.Date)
		row[colCostLabel] = p.Cost.Label
	}
	if p.Price != nil {
		row[colPriceNum] = p.Price.Number.String()
		row[colPriceCur] = p.Price.Currency
		row[colPriceDate] = formatOptionalDate(p.Price.Date)
	}
	return row
}

// UnmarshalPosting converts a CSV row into its transaction header and posting.
func UnmarshalPosting(record []string) (model.Transaction, model.Posting, error) {
	if len(record) != numFields {
		return model.Transaction{}, model.Posting{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, model.Posting{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	txn := model.Transaction{
		ID:        record[colTxnID],
		Date:      date,
		Flag:      model.Flag(record[colFlag]),
		Payee:     record[colPayee],
		Narration: record[colNarration],
	}
	p := model.Posting{Account: record[colAccount]}

	if txn.Metadata, err = model.ParseMetadata(record[colTxnMeta]); err != nil {
		return model.Transaction{}, model.Posting{}, err
	}
	if p.Metadata, err = model.ParseMetadata(record[colPostMeta]); err != nil {
		return model.Transaction{}, model.Posting{}, err
	}

	if record[colNumber] != "" {
		amt, err := model.ParseAmount(record[colNumber], record[colCurrency])
		if err != nil {
			return model.Transaction{}, model.Posting{}, err
		}
		p.Amount = &amt
	}
	if record[colInferred] != "" {
		p.Inferred, err = strconv.ParseBool(record[colInferred])
		if err != nil {
			return model.Transaction{}, model.Posting{}, fmt.Errorf("parsing inferred %q: %w", record[colInferred], err)
		}
	}

	if record[colCostNumber] != "" {
		n, err := decimal.NewFromString(record[colCostNumber])
		if err != nil {
			return model.Transaction{}, model.Posting{}, fmt.Errorf("parsing cost %q: %w", record[colCostNumber], err)
		}
		d, err := parseOptionalDate(record[colCostDate])
		if err != nil {
			return model.Transaction{}, model.Posting{}, err
		}
		p.Cost = &model.Cost{Number: n, Currency: record[colCostCur], Date: d, Label: record[colCostLabel]}
	}

	if record[colPriceNum] != "" {
		n, err := decimal.NewFromString(record[colPriceNum])
		if err != nil {
			return model.Transaction{}, model.Posting{}, fmt.Errorf("parsing price %q: %w", record[colPriceNum], err)
		}
		d, err := parseOptionalDate(record[colPriceDate])
		if err != nil {
			return model.Transaction{}, model.Posting{}, err
		}
		p.Price = &model.Price{Number: n, Currency: record[colPriceCur], Date: d}
	}

	return txn, p, nil
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return &t, nil
}
