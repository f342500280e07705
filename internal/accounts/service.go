package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

var (
	// ErrAccountExists indicates an account name that is already declared.
	ErrAccountExists = errors.New("accounts: account already exists")
	// ErrAccountNotFound indicates an account name that is not declared.
	ErrAccountNotFound = errors.New("accounts: account not found")
	// ErrTypeMismatch indicates a type that disagrees with the name's root segment.
	ErrTypeMismatch = errors.New("accounts: type does not match root category")
)

// AccountPatch is a partial update. Nil fields are left unchanged.
type AccountPatch struct {
	Name      *string
	Type      *model.AccountType
	CloseDate *time.Time
	Metadata  map[string]string // merged; an empty value deletes the key
}

// Service provides in-memory lookup and edits over the declared accounts.
type Service struct {
	accounts []model.Account
	byName   map[string]int
}

// NewService creates a Service from a slice of accounts. When a name is
// declared more than once the first declaration is the one looked up.
func NewService(accounts []model.Account) *Service {
	s := &Service{accounts: accounts}
	s.reindex()
	return s
}

func (s *Service) reindex() {
	s.byName = make(map[string]int, len(s.accounts))
	for i, a := range s.accounts {
		if _, dup := s.byName[a.Name]; !dup {
			s.byName[a.Name] = i
		}
	}
}

// Path returns the location of accounts.csv under a repo root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "accounts.csv")
}

// Load reads accounts/accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return NewService(accts), nil
}

// Save writes the accounts to accounts/accounts.csv.
func (s *Service) Save(repoRoot string) error {
	path := Path(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}
	return nil
}

// All returns all accounts in declaration order, duplicates included.
func (s *Service) All() []model.Account {
	return s.accounts
}

// List returns a copy of all accounts.
func (s *Service) List() ([]model.Account, error) {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

// Lookup returns an account by name.
func (s *Service) Lookup(name string) (model.Account, bool) {
	i, ok := s.byName[name]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Get returns an account by name or ErrAccountNotFound.
func (s *Service) Get(name string) (model.Account, error) {
	a, ok := s.Lookup(name)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return a, nil
}

// Exists reports whether an account name is declared.
func (s *Service) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Add declares a new account. The name is canonicalized and its root must be
// one of the five categories. An empty Type is derived from the root.
func (s *Service) Add(acct model.Account) (model.Account, error) {
	name, err := namespace.Canonical(acct.Name)
	if err != nil {
		return model.Account{}, err
	}
	root, err := namespace.RootCategory(name)
	if err != nil {
		return model.Account{}, err
	}
	if acct.Type == "" {
		acct.Type = root
	}
	if acct.Type != root {
		return model.Account{}, fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, name, root, acct.Type)
	}
	if s.Exists(name) {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountExists, name)
	}

	acct.Name = name
	s.accounts = append(s.accounts, acct)
	s.byName[name] = len(s.accounts) - 1
	return acct, nil
}

// Update applies patch to the named account. A type change without a new
// name moves the account under the matching root segment.
func (s *Service) Update(name string, patch AccountPatch) (model.Account, error) {
	i, ok := s.byName[name]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	acct := s.accounts[i]

	newName := acct.Name
	if patch.Name != nil {
		canonical, err := namespace.Canonical(*patch.Name)
		if err != nil {
			return model.Account{}, err
		}
		newName = canonical
	} else if patch.Type != nil && *patch.Type != acct.Type {
		parts, err := namespace.ParsePath(acct.Name)
		if err != nil {
			return model.Account{}, err
		}
		parts[0] = string(*patch.Type)
		newName = namespace.Join(parts...)
	}

	root, err := namespace.RootCategory(newName)
	if err != nil {
		return model.Account{}, err
	}
	newType := root
	if patch.Type != nil {
		if !patch.Type.Valid() || *patch.Type != root {
			return model.Account{}, fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, newName, root, *patch.Type)
		}
	}

	if newName != acct.Name && s.Exists(newName) {
		return model.Account{}, fmt.Errorf("%w: %s", ErrAccountExists, newName)
	}

	if patch.CloseDate != nil {
		if patch.CloseDate.Before(acct.OpenDate) {
			return model.Account{}, fmt.Errorf("closing %s on %s: before open date %s", acct.Name,
				patch.CloseDate.Format(dateFormat), acct.OpenDate.Format(dateFormat))
		}
		closed := *patch.CloseDate
		acct.CloseDate = &closed
	}

	if len(patch.Metadata) > 0 {
		md := make(map[string]string, len(acct.Metadata)+len(patch.Metadata))
		for k, v := range acct.Metadata {
			md[k] = v
		}
		for k, v := range patch.Metadata {
			if v == "" {
				delete(md, k)
				continue
			}
			md[k] = v
		}
		acct.Metadata = md
	}

	acct.Name = newName
	acct.Type = newType
	s.accounts[i] = acct
	s.reindex()
	return acct, nil
}

// Close sets the close date of the named account.
func (s *Service) Close(name string, date time.Time) (model.Account, error) {
	return s.Update(name, AccountPatch{CloseDate: &date})
}

// Rename moves the named account to newName. Its type follows the new root.
func (s *Service) Rename(name, newName string) (model.Account, error) {
	return s.Update(name, AccountPatch{Name: &newName})
}

// Retype changes the account type, swapping the root segment to match.
func (s *Service) Retype(name string, typ model.AccountType) (model.Account, error) {
	return s.Update(name, AccountPatch{Type: &typ})
}
