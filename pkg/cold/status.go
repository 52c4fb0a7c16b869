package cold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
)

// Status describes what the ledger knows about a path. Exactly one of File
// and Directory is set.
type Status struct {
	Path      string
	File      *Entry
	Directory *DirectoryStatus
}

// DirectoryStatus aggregates the tracked entries strictly under a directory.
type DirectoryStatus struct {
	FileCount int
	TotalSize int64
	Files     []Entry
}

// Status reports the ledger's view of path: the entry itself for a tracked
// file, an aggregate for a local directory containing tracked entries, and
// (nil, nil) when nothing is tracked there.
func (l *Ledger) Status(path string) (*Status, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", path, err)
	}

	entry, err := l.Get(abs)
	if err == nil {
		return &Status{Path: abs, File: &entry}, nil
	}
	if !errors.Is(err, permafrost.ErrNoRecord) {
		return nil, err
	}

	info, statErr := os.Stat(abs)
	if statErr != nil || !info.IsDir() {
		return nil, nil
	}

	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimRight(abs, "/") + "/"
	var files []Entry
	var total int64
	for _, e := range entries {
		if strings.HasPrefix(e.Path, prefix) {
			files = append(files, e)
			total += e.Size
		}
	}
	if len(files) == 0 {
		return nil, nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &Status{
		Path: abs,
		Directory: &DirectoryStatus{
			FileCount: len(files),
			TotalSize: total,
			Files:     files,
		},
	}, nil
}
