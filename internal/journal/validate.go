package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/fiscal"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/namespace"
)

var (
	// ErrUnknownAccount indicates a posting to an undeclared account.
	ErrUnknownAccount = errors.New("journal: unknown account")
	// ErrAccountClosed indicates a posting outside the account's open interval.
	ErrAccountClosed = errors.New("journal: account not open on transaction date")
	// ErrPeriodLocked indicates a transaction dated inside a locked fiscal year.
	ErrPeriodLocked = errors.New("journal: fiscal period is locked")
)

// ValidationError ties a failure to a transaction and, when relevant, a posting.
type ValidationError struct {
	TransactionID string
	Posting       int // 1-based; 0 when the whole transaction is at fault
	Err           error
}

func (e ValidationError) Error() string {
	if e.Posting > 0 {
		return fmt.Sprintf("transaction %s posting %d: %v", e.TransactionID, e.Posting, e.Err)
	}
	return fmt.Sprintf("transaction %s: %v", e.TransactionID, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// AccountChecker resolves declared accounts by name.
type AccountChecker interface {
	Lookup(name string) (model.Account, bool)
}

// Validator applies every write-time check to a transaction.
type Validator struct {
	accounts  AccountChecker
	tolerance Tolerance
	calendar  *fiscal.Calendar
	openYear  int // fiscal years before this one are locked; 0 disables
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithTolerance sets the balancing tolerance.
func WithTolerance(t Tolerance) ValidatorOption {
	return func(v *Validator) { v.tolerance = t }
}

// WithLockedBefore rejects transactions dated before fiscal year openYear.
func WithLockedBefore(cal *fiscal.Calendar, openYear int) ValidatorOption {
	return func(v *Validator) {
		v.calendar = cal
		v.openYear = openYear
	}
}

// NewValidator creates a Validator. accounts may be nil to skip account checks.
func NewValidator(accounts AccountChecker, opts ...ValidatorOption) *Validator {
	v := &Validator{accounts: accounts, tolerance: DefaultTolerance()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CheckOpen returns ErrPeriodLocked when date falls in a locked fiscal year.
func (v *Validator) CheckOpen(date time.Time) error {
	if v.calendar == nil || v.openYear == 0 {
		return nil
	}
	if fy := v.calendar.Year(date); fy < v.openYear {
		return fmt.Errorf("%w: %s falls in FY%d, open from FY%d", ErrPeriodLocked, date.Format(time.DateOnly), fy, v.openYear)
	}
	return nil
}

// Validate checks account names, account lifecycles, the fiscal lock and the
// double-entry balance. It returns the balanced copy of txn, or every
// violation joined into one error.
func (v *Validator) Validate(txn model.Transaction) (model.Transaction, error) {
	var errs []error
	fail := func(posting int, err error) {
		errs = append(errs, ValidationError{TransactionID: txn.ID, Posting: posting, Err: err})
	}

	if err := v.CheckOpen(txn.Date); err != nil {
		fail(0, err)
	}

	for i, p := range txn.Postings {
		if err := namespace.ValidateName(p.Account); err != nil {
			fail(i+1, err)
			continue
		}
		if v.accounts == nil {
			continue
		}
		acct, ok := v.accounts.Lookup(p.Account)
		if !ok {
			fail(i+1, fmt.Errorf("%w %q", ErrUnknownAccount, p.Account))
			continue
		}
		if !acct.IsOpen(txn.Date) {
			fail(i+1, fmt.Errorf("%w: %s on %s", ErrAccountClosed, p.Account, txn.Date.Format(time.DateOnly)))
		}
	}

	balanced, err := BalanceTransaction(txn, v.tolerance)
	if err != nil {
		fail(0, err)
	}

	if len(errs) > 0 {
		return model.Transaction{}, errors.Join(errs...)
	}
	return balanced, nil
}
