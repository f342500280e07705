// Package importer turns bank CSV exports into journal transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ErrUnknownFormat is returned when no parser recognizes an export.
var ErrUnknownFormat = errors.New("importer: unrecognized export format")

// Parser reads one kind of bank export.
type Parser interface {
	Format() string
	// Matches reports whether header is the first row of this export.
	Matches(header []string) bool
	Parse(r io.Reader) ([]model.BankTransaction, error)
}

// Registry holds parsers in registration order.
type Registry struct {
	parsers []Parser
	byName  map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Parser)}
}

// Register adds a parser. Formats are case-insensitive and unique.
func (r *Registry) Register(p Parser) error {
	key := strings.ToLower(p.Format())
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("parser %q already registered", key)
	}
	r.byName[key] = p
	r.parsers = append(r.parsers, p)
	return nil
}

// Get returns the parser for format.
func (r *Registry) Get(format string) (Parser, bool) {
	p, ok := r.byName[strings.ToLower(format)]
	return p, ok
}

// Detect returns the first registered parser that recognizes header.
func (r *Registry) Detect(header []string) (Parser, bool) {
	for _, p := range r.parsers {
		if p.Matches(header) {
			return p, true
		}
	}
	return nil, false
}

// DetectFile reads the header row of the CSV at path and detects its parser.
func (r *Registry) DetectFile(path string) (Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	p, ok := r.Detect(header)
	if !ok {
		return nil, fmt.Errorf("%w: header %q", ErrUnknownFormat, strings.Join(header, ","))
	}
	return p, nil
}

// Formats returns the registered format names in registration order.
func (r *Registry) Formats() []string {
	out := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		out[i] = strings.ToLower(p.Format())
	}
	return out
}

// DefaultRegistry returns the built-in parsers. The generic mapped parser is
// registered last so bank-specific layouts win detection.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(&ChaseParser{})
	_ = r.Register(NewMappedParser(DefaultMapping()))
	return r
}

// readRows reads every record after the header. fields of -1 allows ragged rows.
func readRows(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records, nil
}
