package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

var (
	// ErrDuplicateID indicates a transaction ID that already exists in its month.
	ErrDuplicateID = errors.New("journal: duplicate transaction ID")
	// ErrTransactionNotFound indicates no transaction carries the requested ID.
	ErrTransactionNotFound = errors.New("journal: transaction not found")
)

// Service stores transactions in monthly journal.csv files under a repo root
// and serves account balances computed from them.
type Service struct {
	repoRoot  string
	validator *Validator
	currency  string
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOperatingCurrency sets the currency surfaced for multi-currency accounts.
func WithOperatingCurrency(currency string) ServiceOption {
	return func(s *Service) { s.currency = currency }
}

// WithLogger sets the logger used for write and balance diagnostics.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a journal Service. A nil validator checks balance only.
func NewService(repoRoot string, validator *Validator, opts ...ServiceOption) *Service {
	if validator == nil {
		validator = NewValidator(nil)
	}
	s := &Service{repoRoot: repoRoot, validator: validator, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates txn, assigns the next ID of its month when ID is empty, and
// appends the balanced transaction to the month's journal.csv.
func (s *Service) Add(txn model.Transaction) (model.Transaction, error) {
	year, month := txn.Date.Year(), txn.Date.Month()

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Transaction{}, err
	}
	ids := make([]string, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}

	if txn.ID == "" {
		txn.ID = id.Next(ids, txn.Date)
	} else {
		for _, other := range ids {
			if other == txn.ID {
				return model.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateID, txn.ID)
			}
		}
	}
	if txn.Flag == "" {
		txn.Flag = model.FlagCleared
	}

	balanced, err := s.validator.Validate(txn)
	if err != nil {
		s.logger.Warn("transaction rejected", "id", txn.ID, "error", err)
		return model.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}

	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.Transaction{}, fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return model.Transaction{}, fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, []model.Transaction{balanced}); err != nil {
		return model.Transaction{}, fmt.Errorf("appending transaction: %w", err)
	}

	s.logger.Info("transaction added", "id", balanced.ID, "date", balanced.Date.Format(dateFormat), "postings", len(balanced.Postings))
	return balanced, nil
}

// ReadMonth reads all transactions for a given year/month.
func (s *Service) ReadMonth(year int, month time.Month) ([]model.Transaction, error) {
	return readFile(s.monthPath(year, month))
}

// All reads every month under the repo root, ordered by date.
func (s *Service) All() ([]model.Transaction, error) {
	paths, err := s.monthPaths()
	if err != nil {
		return nil, err
	}

	var all []model.Transaction
	for _, path := range paths {
		txns, err := readFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, txns...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all, nil
}

// CurrentBalances returns one resolved amount per account that has ever been
// posted to. Accounts never posted to are absent.
func (s *Service) CurrentBalances() (map[string]model.Amount, error) {
	txns, err := s.All()
	if err != nil {
		return nil, err
	}
	balances, mixed := BuildInventory(txns, time.Time{}).Surface(s.currency)
	for _, account := range mixed {
		s.logger.Warn("account holds several currencies; surfacing one", "account", account, "currency", balances[account].Currency)
	}
	return balances, nil
}

// BalancesAsOf returns one balance per account, dated date, over the
// transactions up to and including date. Accounts holding several
// currencies surface the operating currency, as CurrentBalances does.
func (s *Service) BalancesAsOf(date time.Time) ([]model.Balance, error) {
	txns, err := s.All()
	if err != nil {
		return nil, err
	}
	surfaced, mixed := BuildInventory(txns, date).Surface(s.currency)
	for _, account := range mixed {
		s.logger.Warn("account holds several currencies; surfacing one", "account", account, "currency", surfaced[account].Currency)
	}

	out := make([]model.Balance, 0, len(surfaced))
	for account, amount := range surfaced {
		out = append(out, model.Balance{Account: account, Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out, nil
}

// RenameAccount rewrites every posting to oldName so it points at newName
// and returns how many postings changed. Months without such postings are
// left untouched.
func (s *Service) RenameAccount(oldName, newName string) (int, error) {
	paths, err := s.monthPaths()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range paths {
		txns, err := readFile(path)
		if err != nil {
			return total, err
		}
		changed := 0
		for i := range txns {
			for j := range txns[i].Postings {
				if txns[i].Postings[j].Account == oldName {
					txns[i].Postings[j].Account = newName
					changed++
				}
			}
		}
		if changed == 0 {
			continue
		}
		if err := writeFile(path, txns); err != nil {
			return total, err
		}
		total += changed
	}

	s.logger.Info("account renamed in journal", "from", oldName, "to", newName, "postings", total)
	return total, nil
}

// Get returns the transaction with the given ID.
func (s *Service) Get(txnID string) (model.Transaction, error) {
	_, txns, i, err := s.locate(txnID)
	if err != nil {
		return model.Transaction{}, err
	}
	return txns[i], nil
}

// Update replaces the transaction with the given ID by txn, keeping the ID.
// txn is validated like a new transaction and may move to another month.
// Neither the old nor the new date may fall in a locked period.
func (s *Service) Update(txnID string, txn model.Transaction) (model.Transaction, error) {
	path, txns, i, err := s.locate(txnID)
	if err != nil {
		return model.Transaction{}, err
	}
	if err := s.validator.CheckOpen(txns[i].Date); err != nil {
		return model.Transaction{}, err
	}

	txn.ID = txnID
	if txn.Flag == "" {
		txn.Flag = txns[i].Flag
	}
	balanced, err := s.validator.Validate(txn)
	if err != nil {
		s.logger.Warn("transaction update rejected", "id", txnID, "error", err)
		return model.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}

	target := s.monthPath(balanced.Date.Year(), balanced.Date.Month())
	if target == path {
		txns[i] = balanced
		if err := writeFile(path, txns); err != nil {
			return model.Transaction{}, err
		}
	} else {
		dest, err := readFile(target)
		if err != nil {
			return model.Transaction{}, err
		}
		for _, other := range dest {
			if other.ID == txnID {
				return model.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateID, txnID)
			}
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return model.Transaction{}, fmt.Errorf("creating journal dir: %w", err)
		}
		if err := writeFile(target, append(dest, balanced)); err != nil {
			return model.Transaction{}, err
		}
		if err := writeFile(path, slices.Delete(txns, i, i+1)); err != nil {
			return model.Transaction{}, err
		}
	}

	s.logger.Info("transaction updated", "id", txnID, "date", balanced.Date.Format(dateFormat))
	return balanced, nil
}

// Delete removes the transaction with the given ID and returns it.
func (s *Service) Delete(txnID string) (model.Transaction, error) {
	path, txns, i, err := s.locate(txnID)
	if err != nil {
		return model.Transaction{}, err
	}
	removed := txns[i]
	if err := s.validator.CheckOpen(removed.Date); err != nil {
		return model.Transaction{}, err
	}
	if err := writeFile(path, slices.Delete(txns, i, i+1)); err != nil {
		return model.Transaction{}, err
	}

	s.logger.Info("transaction deleted", "id", txnID)
	return removed, nil
}

// locate finds the month file holding txnID, trying the month the ID names
// before scanning the rest.
func (s *Service) locate(txnID string) (string, []model.Transaction, int, error) {
	var paths []string
	if e, err := id.Parse(txnID); err == nil {
		paths = append(paths, s.monthPath(e.Year, e.Month))
	}
	all, err := s.monthPaths()
	if err != nil {
		return "", nil, -1, err
	}
	paths = append(paths, all...)

	searched := make(map[string]bool, len(paths))
	for _, p := range paths {
		if searched[p] {
			continue
		}
		searched[p] = true
		txns, err := readFile(p)
		if err != nil {
			return "", nil, -1, err
		}
		for i, t := range txns {
			if t.ID == txnID {
				return p, txns, i, nil
			}
		}
	}
	return "", nil, -1, fmt.Errorf("%w: %s", ErrTransactionNotFound, txnID)
}

func (s *Service) monthPaths() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.repoRoot, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Service) monthPath(year int, month time.Month) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", int(month)), "journal.csv")
}

func readFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return txns, nil
}

func writeFile(path string, txns []model.Transaction) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if err := WriteTransactions(f, txns); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
