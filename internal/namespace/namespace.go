// Package namespace parses colon-delimited account names such as
// "Assets:Bank:Checking" into hierarchy paths and maps the first segment
// onto one of the five root account categories.
package namespace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Separator delimits the segments of an account name.
const Separator = ":"

var (
	// ErrInvalidAccountName indicates an empty, unseparated or blank-segment name.
	ErrInvalidAccountName = errors.New("namespace: invalid account name")
	// ErrUnknownAccountRoot indicates a first segment outside the five root categories.
	ErrUnknownAccountRoot = errors.New("namespace: unknown account root")
)

// NameError reports why a specific account name was rejected.
type NameError struct {
	Name   string
	Reason string
	Err    error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%v %q: %s", e.Err, e.Name, e.Reason)
}

func (e *NameError) Unwrap() error {
	return e.Err
}

func invalid(name, reason string) error {
	return &NameError{Name: name, Reason: reason, Err: ErrInvalidAccountName}
}

// ParsePath splits an account name into its trimmed, non-empty segments.
func ParsePath(name string) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid(name, "name is empty")
	}
	if !strings.Contains(name, Separator) {
		return nil, invalid(name, "names must use colon separators (e.g. Assets:Bank:Checking)")
	}
	parts := strings.Split(name, Separator)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, invalid(name, fmt.Sprintf("segment %d is empty", i+1))
		}
		parts[i] = p
	}
	return parts, nil
}

// RootCategory derives the account type from the first segment of name.
func RootCategory(name string) (model.AccountType, error) {
	first, _, _ := strings.Cut(name, Separator)
	typ := model.AccountType(strings.TrimSpace(first))
	if !typ.Valid() {
		return "", &NameError{Name: name, Reason: fmt.Sprintf("root %q is not one of Assets, Liabilities, Equity, Income, Expenses", first), Err: ErrUnknownAccountRoot}
	}
	return typ, nil
}

// ValidateName is the user-facing check applied before an account is created:
// the name must nest under a root (two or more segments), none of them blank.
func ValidateName(raw string) error {
	_, err := ParsePath(raw)
	return err
}

// Canonical returns name rebuilt from its trimmed segments.
func Canonical(name string) (string, error) {
	parts, err := ParsePath(name)
	if err != nil {
		return "", err
	}
	return Join(parts...), nil
}

// Join builds an account name from segments.
func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Parent returns the name one level up, or "" for a single segment.
func Parent(name string) string {
	i := strings.LastIndex(name, Separator)
	if i < 0 {
		return ""
	}
	return name[:i]
}

// Leaf returns the last segment of name.
func Leaf(name string) string {
	return name[strings.LastIndex(name, Separator)+1:]
}

// IsDescendant reports whether name sits strictly below ancestor.
func IsDescendant(name, ancestor string) bool {
	return strings.HasPrefix(name, ancestor+Separator)
}
