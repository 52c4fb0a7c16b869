package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithinScanPaths(t *testing.T) {
	scanPaths := []string{"/home", "/srv/"}

	assert.True(t, withinScanPaths("/home/alice/docs", scanPaths))
	assert.True(t, withinScanPaths("/home", scanPaths))
	assert.True(t, withinScanPaths("/srv/data", scanPaths))
	assert.False(t, withinScanPaths("/opt/stuff", scanPaths))
	assert.False(t, withinScanPaths("/homestead", scanPaths))
}

func TestFilterNoBackup(t *testing.T) {
	backup := []string{
		"/home/alice/docs",
		"/home/alice/docs/cache",
		"/home/bob/media",
	}
	noBackup := []string{"/home/alice/docs/cache"}

	assert.Equal(t, []string{"/home/alice/docs", "/home/bob/media"},
		filterNoBackup(backup, noBackup))
}

func TestFilterNoBackupSubtree(t *testing.T) {
	backup := []string{
		"/home/alice/project",
		"/home/alice/project/build/artifacts",
	}
	noBackup := []string{"/home/alice/project/build"}

	assert.Equal(t, []string{"/home/alice/project"},
		filterNoBackup(backup, noBackup))
}

func TestFilterNoBackupPrefixNotSubtree(t *testing.T) {
	backup := []string{"/home/alice/docs-archive"}
	noBackup := []string{"/home/alice/docs"}

	assert.Equal(t, backup, filterNoBackup(backup, noBackup))
}

func TestEffectiveBackupPaths(t *testing.T) {
	result := &Result{BackupPaths: []string{"/home/bob/media", "/home/alice/docs"}}

	paths := EffectiveBackupPaths(result, []string{"/etc", "/home/alice/docs"})
	assert.Equal(t, []string{"/etc", "/home/alice/docs", "/home/bob/media"}, paths)
}

func TestEffectiveBackupPathsEmpty(t *testing.T) {
	assert.Empty(t, EffectiveBackupPaths(&Result{}, nil))
}
