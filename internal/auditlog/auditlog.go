// Package auditlog records every change the CLI makes to a workspace in
// logs/audit.csv, one row per mutation.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names a kind of ledger mutation.
type Action string

const (
	ActionInit          Action = "init"
	ActionAccountAdd    Action = "account.add"
	ActionAccountClose  Action = "account.close"
	ActionAccountRename Action = "account.rename"
	ActionAccountRetype Action = "account.retype"
	ActionTxnAdd        Action = "txn.add"
	ActionTxnUpdate     Action = "txn.update"
	ActionTxnDelete     Action = "txn.delete"
	ActionImport        Action = "import"
)

// Entry is one row in the audit log.
type Entry struct {
	Time    time.Time
	Action  Action
	Subject string // account name or transaction ID
	Details string
	Commit  string // git hash when the change was committed
}

// Header is the CSV header for the audit log.
const Header = "time,action,subject,details,commit"

const (
	numFields = 5
	relPath   = "logs/audit.csv"
)

// Path returns the audit log location under repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(relPath))
}

func (e Entry) record() []string {
	return []string{e.Time.UTC().Format(time.RFC3339), string(e.Action), e.Subject, e.Details, e.Commit}
}

func parseRecord(rec []string) (Entry, error) {
	if len(rec) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing time %q: %w", rec[0], err)
	}
	return Entry{Time: ts, Action: Action(rec[1]), Subject: rec[2], Details: rec[3], Commit: rec[4]}, nil
}

// Log appends entries to the workspace audit log.
type Log struct {
	root string
	now  func() time.Time
}

// New returns the audit log of the workspace at repoRoot.
func New(repoRoot string) *Log {
	return &Log{root: repoRoot, now: time.Now}
}

// Record appends one entry stamped with the current time.
func (l *Log) Record(action Action, subject, details string) error {
	return l.Append(Entry{Time: l.now(), Action: action, Subject: subject, Details: details})
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	path := Path(l.root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(e.record()); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry, or nil when nothing has been logged yet.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(Path(l.root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
