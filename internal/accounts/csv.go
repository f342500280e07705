package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

const (
	numFields    = 5
	dateFormat   = "2006-01-02"
	colName      = 0
	colType      = 1
	colOpenDate  = 2
	colCloseDate = 3
	colMetadata  = 4
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"name", "type", "open_date", "close_date", "metadata"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	if !acct.OpenDate.IsZero() {
		row[colOpenDate] = acct.OpenDate.Format(dateFormat)
	}
	if acct.CloseDate != nil {
		row[colCloseDate] = acct.CloseDate.Format(dateFormat)
	}
	row[colMetadata] = model.FormatMetadata(acct.Metadata)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	acct := model.Account{
		Name: record[colName],
		Type: model.AccountType(record[colType]),
	}

	if record[colOpenDate] != "" {
		open, err := time.Parse(dateFormat, record[colOpenDate])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing open_date %q: %w", record[colOpenDate], err)
		}
		acct.OpenDate = open
	}
	if record[colCloseDate] != "" {
		closed, err := time.Parse(dateFormat, record[colCloseDate])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing close_date %q: %w", record[colCloseDate], err)
		}
		acct.CloseDate = &closed
	}

	md, err := model.ParseMetadata(record[colMetadata])
	if err != nil {
		return model.Account{}, err
	}
	acct.Metadata = md
	return acct, nil
}
