package journal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// DefaultPageSize is used when a Query leaves PageSize unset.
const DefaultPageSize = 25

// ErrUnknownSortField is returned for a sort key List does not support.
var ErrUnknownSortField = errors.New("journal: unknown sort field")

// SortField is a transaction attribute List can order by.
type SortField string

const (
	SortDate      SortField = "date"
	SortPayee     SortField = "payee"
	SortNarration SortField = "narration"
	SortAccounts  SortField = "accounts"
)

// ParseSortField accepts the field names case-insensitively. Empty means date.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortDate, nil
	case SortDate, SortPayee, SortNarration, SortAccounts:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q, want date, payee, narration or accounts", ErrUnknownSortField, s)
	}
}

// Query selects and orders transactions for listing.
type Query struct {
	Match      string // case-insensitive text in the ID, payee, narration or a posting account
	Sort       SortField
	Descending bool
	Page       int // 1-based; 0 is the first page
	PageSize   int // 0 uses DefaultPageSize
}

// Page is one page of a listing.
type Page struct {
	Transactions []model.Transaction
	Number       int
	Size         int
	TotalPages   int
	TotalCount   int
}

// Search filters, sorts and paginates txns without modifying them. A page
// past the end is empty; TotalPages is at least 1.
func Search(txns []model.Transaction, q Query) (Page, error) {
	field, err := ParseSortField(string(q.Sort))
	if err != nil {
		return Page{}, err
	}
	if q.Page < 0 || q.PageSize < 0 {
		return Page{}, errors.New("journal: page and page size must not be negative")
	}
	number, size := max(q.Page, 1), q.PageSize
	if size == 0 {
		size = DefaultPageSize
	}

	needle := strings.ToLower(strings.TrimSpace(q.Match))
	matched := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if needle == "" || matches(txn, needle) {
			matched = append(matched, txn)
		}
	}

	key := sortKey(field)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := key(matched[i]), key(matched[j])
		if q.Descending {
			return a > b
		}
		return a < b
	})

	p := Page{Number: number, Size: size, TotalCount: len(matched)}
	p.TotalPages = max((len(matched)+size-1)/size, 1)
	if start := (number - 1) * size; start < len(matched) {
		p.Transactions = matched[start:min(start+size, len(matched))]
	}
	return p, nil
}

func matches(txn model.Transaction, needle string) bool {
	for _, s := range []string{txn.ID, txn.Payee, txn.Narration} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	for _, p := range txn.Postings {
		if strings.Contains(strings.ToLower(p.Account), needle) {
			return true
		}
	}
	return false
}

func sortKey(field SortField) func(model.Transaction) string {
	switch field {
	case SortPayee:
		return func(t model.Transaction) string { return strings.ToLower(t.Payee) }
	case SortNarration:
		return func(t model.Transaction) string { return strings.ToLower(t.Narration) }
	case SortAccounts:
		return func(t model.Transaction) string {
			names := make([]string, len(t.Postings))
			for i, p := range t.Postings {
				names[i] = p.Account
			}
			return strings.ToLower(strings.Join(names, " "))
		}
	default:
		return func(t model.Transaction) string { return t.Date.Format(dateFormat) + " " + t.ID }
	}
}

// List runs q over every transaction in the journal.
func (s *Service) List(q Query) (Page, error) {
	all, err := s.All()
	if err != nil {
		return Page{}, err
	}
	return Search(all, q)
}
