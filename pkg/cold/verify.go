package cold

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Verify re-hashes tracked files and compares against the ledger. When
// pathFilter is non-empty only entries matching a filter path (exactly, or
// under a filter directory) are checked. Files missing locally are skipped:
// local deletion after archival is expected, the remote copy is the record.
// The ledger is never mutated. Both result lists are sorted.
func (l *Ledger) Verify(pathFilter []string) (passed, failed []string, err error) {
	entries, err := l.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load checksum ledger: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for path := range entries {
		if matchesFilter(path, pathFilter) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	passed = []string{}
	failed = []string{}
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}

		digest, _, hashErr := FileSHA256(path)
		if hashErr != nil {
			return nil, nil, fmt.Errorf("failed to hash %s: %w", path, hashErr)
		}

		if digest == entries[path].SHA256 {
			passed = append(passed, path)
		} else {
			failed = append(failed, path)
		}
	}

	return passed, failed, nil
}

func matchesFilter(path string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		f = strings.TrimRight(f, "/")
		if path == f || strings.HasPrefix(path, f+"/") {
			return true
		}
	}
	return false
}
