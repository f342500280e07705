package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes an export waiting in the inbox.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Inbox is the workspace's import/ directory. Imported files move to
// import/processed/.
type Inbox struct {
	dir       string
	processed string
}

// NewInbox returns the inbox of the workspace at repoRoot.
func NewInbox(repoRoot string) *Inbox {
	dir := filepath.Join(repoRoot, "import")
	return &Inbox{dir: dir, processed: filepath.Join(dir, "processed")}
}

// Pending lists the CSV files in the inbox by name. A missing inbox is empty.
func (in *Inbox) Pending() ([]FileInfo, error) {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Path:    filepath.Join(in.dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Archive moves name into processed/ and returns its new path. An earlier
// file of the same name is kept; the new one gets a numeric suffix.
func (in *Inbox) Archive(name string) (string, error) {
	if err := os.MkdirAll(in.processed, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	dst := filepath.Join(in.processed, name)
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(in.processed, fmt.Sprintf("%s-%d%s", base, n, ext))
	}

	if err := os.Rename(filepath.Join(in.dir, name), dst); err != nil {
		return "", fmt.Errorf("archiving %s: %w", name, err)
	}
	return dst, nil
}
