package cold

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackFile(t *testing.T, ledger *Ledger, path string) Entry {
	t.Helper()

	digest, size, err := FileSHA256(path)
	require.NoError(t, err)

	entry := Entry{Path: path, SHA256: digest, Size: size, BackedUp: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, ledger.PutAll([]Entry{entry}))
	return entry
}

func TestVerifyAllPass(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	a := mustWriteFile(t, dir, "a.txt", "aaa")
	b := mustWriteFile(t, dir, "b.txt", "bbb")
	trackFile(t, ledger, a)
	trackFile(t, ledger, b)

	passed, failed, err := ledger.Verify(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, passed)
	assert.Empty(t, failed)
}

func TestVerifyDetectsDrift(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	a := mustWriteFile(t, dir, "a.txt", "original")
	trackFile(t, ledger, a)
	require.NoError(t, os.WriteFile(a, []byte("modified"), 0644))

	passed, failed, err := ledger.Verify(nil)
	require.NoError(t, err)
	assert.Empty(t, passed)
	assert.Equal(t, []string{a}, failed)
}

// Deleting a file locally after archival must not count as a failure.
func TestVerifySkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	a := mustWriteFile(t, dir, "a.txt", "aaa")
	gone := mustWriteFile(t, dir, "gone.txt", "gone")
	trackFile(t, ledger, a)
	trackFile(t, ledger, gone)
	require.NoError(t, os.Remove(gone))

	passed, failed, err := ledger.Verify(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, passed)
	assert.Empty(t, failed)

	// The missing file stays tracked.
	_, err = ledger.Get(gone)
	assert.NoError(t, err)
}

func TestVerifyPathFilter(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	inside := mustWriteFile(t, dir, "sub/in.txt", "in")
	outside := mustWriteFile(t, dir, "out.txt", "out")
	trackFile(t, ledger, inside)
	trackFile(t, ledger, outside)

	passed, failed, err := ledger.Verify([]string{filepath.Join(dir, "sub")})
	require.NoError(t, err)
	assert.Equal(t, []string{inside}, passed)
	assert.Empty(t, failed)
}

func TestVerifyDoesNotMutateLedger(t *testing.T) {
	dir := t.TempDir()
	ledger := newTestLedger(t, "host1")

	a := mustWriteFile(t, dir, "a.txt", "original")
	entry := trackFile(t, ledger, a)
	require.NoError(t, os.WriteFile(a, []byte("modified"), 0644))

	_, _, err := ledger.Verify(nil)
	require.NoError(t, err)

	got, err := ledger.Get(a)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}
