package cold

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTrackedFile(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	path := mustWriteFile(t, dir, "file.txt", "contents")
	entry := trackFile(t, ledger, path)

	status, err := ledger.Status(path)
	require.NoError(t, err)
	require.NotNil(t, status)
	require.NotNil(t, status.File)
	assert.Nil(t, status.Directory)
	assert.Equal(t, entry, *status.File)
}

func TestStatusDirectoryAggregate(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	a := mustWriteFile(t, dir, "a.txt", "0123456789")
	b := mustWriteFile(t, dir, "sub/b.txt", "01234567890123456789")
	trackFile(t, ledger, a)
	trackFile(t, ledger, b)

	status, err := ledger.Status(dir)
	require.NoError(t, err)
	require.NotNil(t, status)
	require.NotNil(t, status.Directory)
	assert.Nil(t, status.File)

	assert.Equal(t, 2, status.Directory.FileCount)
	assert.Equal(t, int64(30), status.Directory.TotalSize)
	require.Len(t, status.Directory.Files, 2)
	assert.Equal(t, a, status.Directory.Files[0].Path)
	assert.Equal(t, b, status.Directory.Files[1].Path)
}

func TestStatusUntracked(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	status, err := ledger.Status(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Nil(t, status)
}

// A directory with no tracked entries under it is untracked, even if it
// exists locally.
func TestStatusEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	status, err := ledger.Status(dir)
	require.NoError(t, err)
	assert.Nil(t, status)
}

// Entries under a sibling directory sharing the name as a prefix must not
// leak into the aggregate.
func TestStatusStrictPrefix(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	inside := mustWriteFile(t, dir, "data/f.txt", "in")
	sibling := mustWriteFile(t, dir, "database/g.txt", "out")
	trackFile(t, ledger, inside)
	trackFile(t, ledger, sibling)

	status, err := ledger.Status(filepath.Join(dir, "data"))
	require.NoError(t, err)
	require.NotNil(t, status)
	require.NotNil(t, status.Directory)
	assert.Equal(t, 1, status.Directory.FileCount)
	assert.Equal(t, inside, status.Directory.Files[0].Path)
}
