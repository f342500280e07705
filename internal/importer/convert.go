package importer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

const (
	uncategorizedIncome  = "Income:Uncategorized"
	uncategorizedExpense = "Expenses:Uncategorized"
)

// Journal is the subset of the journal store the importer writes to.
type Journal interface {
	Add(txn model.Transaction) (model.Transaction, error)
	ReadMonth(year int, month time.Month) ([]model.Transaction, error)
}

// Options controls how bank rows become transactions.
type Options struct {
	Account  string     // ledger account the export belongs to, e.g. Assets:Bank:Checking
	Currency string     // used when a row carries no currency
	Flag     model.Flag // defaults to cleared
}

// ToTransaction turns a bank row into a two-posting transaction. The bank
// account posting carries the amount; the counter posting is elided and left
// for the validator to balance. Rows without a category go to
// Income:Uncategorized or Expenses:Uncategorized by the amount's sign.
func ToTransaction(bt model.BankTransaction, opts Options) (model.Transaction, error) {
	currency := bt.Currency
	if currency == "" {
		currency = opts.Currency
	}
	if currency == "" {
		return model.Transaction{}, fmt.Errorf("no currency for %q", bt.Description)
	}

	counter := uncategorizedExpense
	if !bt.Amount.IsNegative() {
		counter = uncategorizedIncome
	}
	if bt.Category != "" {
		canonical, err := namespace.Canonical(bt.Category)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("category: %w", err)
		}
		counter = canonical
	}

	flag := opts.Flag
	if flag == "" {
		flag = model.FlagCleared
	}

	var md map[string]string
	if bt.Reference != "" {
		md = map[string]string{"ref": bt.Reference}
	}

	return model.Transaction{
		Date:      bt.Date,
		Flag:      flag,
		Payee:     bt.Payee,
		Narration: bt.Description,
		Metadata:  md,
		Postings: []model.Posting{
			{Account: opts.Account, Amount: &model.Amount{Number: bt.Amount, Currency: currency}},
			{Account: counter},
		},
	}, nil
}

// Result summarizes an import run.
type Result struct {
	Imported   []model.Transaction
	Duplicates int
	Errors     []error // one per rejected row; the run continues past them
}

// Importer writes bank rows into the journal, skipping rows already present.
type Importer struct {
	journal Journal
	logger  *slog.Logger
}

// New creates an Importer.
func New(j Journal, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{journal: j, logger: logger}
}

// Import converts and appends every row. A row is a duplicate when the
// journal already held a transaction with the same date, narration and
// amount on the importing account before this run. Each existing entry
// absorbs one row, so repeated identical rows in an export are kept up to
// the count the journal lacks.
func (im *Importer) Import(rows []model.BankTransaction, opts Options) (Result, error) {
	var res Result
	existingRows := make(map[string]int)
	loaded := make(map[string]bool)

	for i, bt := range rows {
		month := bt.Date.Format("2006-01")
		if !loaded[month] {
			existing, err := im.journal.ReadMonth(bt.Date.Year(), bt.Date.Month())
			if err != nil {
				return res, fmt.Errorf("reading journal for %s: %w", month, err)
			}
			for _, txn := range existing {
				for _, p := range txn.Postings {
					if p.Account == opts.Account && p.Amount != nil {
						existingRows[dedupKey(txn.Date, txn.Narration, p.Amount.String())]++
					}
				}
			}
			loaded[month] = true
		}

		txn, err := ToTransaction(bt, opts)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}

		key := dedupKey(txn.Date, txn.Narration, txn.Postings[0].Amount.String())
		if existingRows[key] > 0 {
			existingRows[key]--
			res.Duplicates++
			im.logger.Debug("skipping duplicate", "date", txn.Date.Format(time.DateOnly), "narration", txn.Narration)
			continue
		}

		added, err := im.journal.Add(txn)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		res.Imported = append(res.Imported, added)
	}

	im.logger.Info("import finished", "account", opts.Account,
		"imported", len(res.Imported), "duplicates", res.Duplicates, "errors", len(res.Errors))
	return res, nil
}

func dedupKey(date time.Time, narration, amount string) string {
	return date.Format(time.DateOnly) + "|" + narration + "|" + amount
}
