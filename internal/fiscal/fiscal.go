// Package fiscal computes fiscal years for a configurable, possibly
// non-calendar-aligned year start such as April 1.
package fiscal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ErrInvalidFiscalStart indicates a malformed "MM-DD" fiscal year start.
var ErrInvalidFiscalStart = errors.New("fiscal: invalid fiscal year start")

// daysIn holds month lengths of a non-leap year.
var daysIn = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Start is the month and day a fiscal year begins on.
type Start struct {
	Month time.Month
	Day   int
}

// CalendarYear is the January 1 start.
var CalendarYear = Start{Month: time.January, Day: 1}

// ParseStart parses "MM-DD" (one or two digits each). The day must exist in
// a non-leap year, so February 29 is rejected.
func ParseStart(s string) (Start, error) {
	m, d, ok := strings.Cut(s, "-")
	if !ok || !isShortNumber(m) || !isShortNumber(d) {
		return Start{}, fmt.Errorf("%w: %q, want MM-DD", ErrInvalidFiscalStart, s)
	}
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	if month < 1 || month > 12 {
		return Start{}, fmt.Errorf("%w: month %d out of range", ErrInvalidFiscalStart, month)
	}
	if day < 1 || day > daysIn[month] {
		return Start{}, fmt.Errorf("%w: day %d out of range for month %d", ErrInvalidFiscalStart, day, month)
	}
	return Start{Month: time.Month(month), Day: day}, nil
}

func isShortNumber(s string) bool {
	if len(s) < 1 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s Start) String() string {
	return fmt.Sprintf("%02d-%02d", int(s.Month), s.Day)
}

// Calendar answers fiscal-year questions for one configured start.
type Calendar struct {
	start Start
	now   func() time.Time
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithClock overrides the clock used to resolve the current fiscal year.
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) { c.now = now }
}

// New creates a Calendar for start.
func New(start Start, opts ...Option) *Calendar {
	c := &Calendar{start: start, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FiscalStart returns the configured start.
func (c *Calendar) FiscalStart() Start {
	return c.start
}

// Year returns the fiscal year label of date. The start date itself belongs
// to the new fiscal year.
func (c *Calendar) Year(date time.Time) int {
	y, m, d := date.Date()
	if m > c.start.Month || (m == c.start.Month && d >= c.start.Day) {
		return y
	}
	return y - 1
}

// CurrentYear returns the fiscal year containing today.
func (c *Calendar) CurrentYear() int {
	return c.Year(c.now())
}

// Start returns the first day of fiscal year. Zero means the current year.
func (c *Calendar) Start(year int) time.Time {
	if year == 0 {
		year = c.CurrentYear()
	}
	return time.Date(year, c.start.Month, c.start.Day, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of fiscal year: the day before the next year
// starts. Zero means the current year.
func (c *Calendar) End(year int) time.Time {
	if year == 0 {
		year = c.CurrentYear()
	}
	return time.Date(year+1, c.start.Month, c.start.Day-1, 0, 0, 0, 0, time.UTC)
}

// Period returns the bounds of fiscal year. Zero means the current year.
func (c *Calendar) Period(year int) Period {
	if year == 0 {
		year = c.CurrentYear()
	}
	return Period{Year: year, Start: c.Start(year), End: c.End(year)}
}

// PeriodOf returns the fiscal period containing date.
func (c *Calendar) PeriodOf(date time.Time) Period {
	return c.Period(c.Year(date))
}

// Period is one fiscal year with inclusive day bounds.
type Period struct {
	Year  int
	Start time.Time
	End   time.Time
}

// Contains reports whether date falls on a day within the period.
func (p Period) Contains(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("FY%d", p.Year)
}

// Bucket holds the transactions of one fiscal year.
type Bucket struct {
	Period       Period
	Transactions []model.Transaction
}

// Bucket groups transactions by fiscal year, oldest year first. Input order
// is preserved within a bucket.
func (c *Calendar) Bucket(txns []model.Transaction) []Bucket {
	byYear := make(map[int][]model.Transaction)
	for _, txn := range txns {
		y := c.Year(txn.Date)
		byYear[y] = append(byYear[y], txn)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	buckets := make([]Bucket, 0, len(years))
	for _, y := range years {
		buckets = append(buckets, Bucket{Period: c.Period(y), Transactions: byYear[y]})
	}
	return buckets
}
