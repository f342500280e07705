// Package id formats and parses transaction IDs of the form "YYYY-MM-NNN",
// numbered per calendar month.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is the decoded form of a transaction ID.
type Entry struct {
	Year  int
	Month time.Month
	Seq   int
}

func (e Entry) String() string {
	return Format(e.Year, e.Month, e.Seq)
}

// Format returns an ID like "2025-01-001".
func Format(year int, month time.Month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, int(month), seq)
}

// Parse decodes an ID produced by Format.
func Parse(s string) (Entry, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("invalid transaction ID %q: want YYYY-MM-NNN", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Entry{}, fmt.Errorf("invalid transaction ID %q: segment %q is not a number", s, p)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 {
		return Entry{}, fmt.Errorf("invalid transaction ID %q: month %d out of range", s, nums[1])
	}
	if nums[2] < 1 {
		return Entry{}, fmt.Errorf("invalid transaction ID %q: sequence must start at 1", s)
	}
	return Entry{Year: nums[0], Month: time.Month(nums[1]), Seq: nums[2]}, nil
}

// Next returns the ID following the highest sequence among ids that belong
// to the month of date. IDs that do not parse are ignored.
func Next(ids []string, date time.Time) string {
	year, month := date.Year(), date.Month()
	maxSeq := 0
	for _, s := range ids {
		e, err := Parse(s)
		if err != nil || e.Year != year || e.Month != month {
			continue
		}
		if e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	return Format(year, month, maxSeq+1)
}
