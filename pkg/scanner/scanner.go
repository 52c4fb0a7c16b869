// Package scanner discovers what to back up by locating sentinel marker
// files: a directory containing .backup joins the primary backups, .nobackup
// excludes its subtree, .coldstorage and .coldstorage_redundant route a tree
// to cold storage.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	MarkerBackup        = ".backup"
	MarkerNoBackup      = ".nobackup"
	MarkerCold          = ".coldstorage"
	MarkerColdRedundant = ".coldstorage_redundant"
)

// Result holds the marker directories found on disk, grouped by marker.
// Paths are the directories containing the markers, sorted.
type Result struct {
	BackupPaths        []string
	NoBackupPaths      []string
	ColdPaths          []string
	ColdRedundantPaths []string
}

// Scanner shells out to plocate. ScanPaths bounds the result: markers
// outside every scan path are ignored.
type Scanner struct {
	ScanPaths []string
	Log       *logrus.Entry
}

func New(scanPaths []string, log *logrus.Entry) *Scanner {
	return &Scanner{ScanPaths: scanPaths, Log: log}
}

// UpdateDB refreshes the plocate database so freshly-created markers are
// visible. Needs root on most systems.
func (s *Scanner) UpdateDB() error {
	var stderr bytes.Buffer
	cmd := exec.Command("updatedb")
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("updatedb: %w: %s", err, stderr.String())
	}
	return nil
}

// Scan locates all four marker types and applies .nobackup filtering to the
// backup set.
func (s *Scanner) Scan(updateDB bool) (*Result, error) {
	if updateDB {
		if err := s.UpdateDB(); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for marker, dest := range map[string]*[]string{
		MarkerBackup:        &result.BackupPaths,
		MarkerNoBackup:      &result.NoBackupPaths,
		MarkerCold:          &result.ColdPaths,
		MarkerColdRedundant: &result.ColdRedundantPaths,
	} {
		dirs, err := s.locateMarker(marker)
		if err != nil {
			return nil, err
		}
		s.Log.WithField("marker", marker).Debugf("found %d directories", len(dirs))
		*dest = dirs
	}

	result.BackupPaths = filterNoBackup(result.BackupPaths, result.NoBackupPaths)
	return result, nil
}

// locateMarker runs plocate for one marker filename and returns the sorted
// directories containing it, restricted to the scan paths.
func (s *Scanner) locateMarker(marker string) ([]string, error) {
	// Anchor to the exact filename so .coldstorage does not also match
	// .coldstorage_redundant.
	pattern := fmt.Sprintf(`/\%s$`, marker)

	out, err := s.locate(pattern)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, line := range out {
		dir := filepath.Dir(line)
		if withinScanPaths(dir, s.ScanPaths) {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// locate wraps plocate -r. Exit code 1 means no matches, which is an empty
// result rather than an error; anything else is a real failure.
func (s *Scanner) locate(pattern string) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("plocate", "-r", pattern)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("plocate -r %s: %w: %s", pattern, err, stderr.String())
	}

	var lines []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func withinScanPaths(path string, scanPaths []string) bool {
	for _, sp := range scanPaths {
		sp = strings.TrimRight(sp, "/")
		if path == sp || strings.HasPrefix(path, sp+"/") {
			return true
		}
	}
	return false
}

// filterNoBackup drops backup paths that sit at or below a .nobackup
// directory.
func filterNoBackup(backupPaths, noBackupPaths []string) []string {
	var kept []string
	for _, p := range backupPaths {
		excluded := false
		for _, nb := range noBackupPaths {
			if p == nb || strings.HasPrefix(p, nb+"/") {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, p)
		}
	}
	return kept
}

// EffectiveBackupPaths merges the scanned backup set with statically
// configured extra paths, deduplicated and sorted.
func EffectiveBackupPaths(result *Result, extra []string) []string {
	seen := map[string]bool{}
	var paths []string
	for _, p := range append(append([]string{}, result.BackupPaths...), extra...) {
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
