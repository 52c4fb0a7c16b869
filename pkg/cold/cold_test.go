package cold

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permafrost-sh/permafrost/pkg/config"
)

func mustSymlink(t *testing.T, target, link string) {
	t.Helper()
	require.NoError(t, os.Symlink(target, link))
}

type sentFile struct {
	local  string
	remote string
	host   string
}

// fakeExecutor records sends and fails once a configured call count is hit.
type fakeExecutor struct {
	sent    []sentFile
	failAt  int // 1-based call number to fail on, 0 = never
	callNum int
}

func (f *fakeExecutor) Send(localPath, remotePath string, box config.StorageBox) error {
	f.callNum++
	if f.failAt != 0 && f.callNum >= f.failAt {
		return errors.New("connection reset")
	}
	f.sent = append(f.sent, sentFile{local: localPath, remote: remotePath, host: box.Host})
	return nil
}

func discardLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestCoordinator(t *testing.T, exec *fakeExecutor, redundantBox *config.StorageBox) *Coordinator {
	t.Helper()
	return &Coordinator{
		Machine: "host1",
		Cold: config.ColdStorage{
			StorageBox:          config.StorageBox{Host: "primary.example.net", User: "u1", Path: "/cold"},
			RedundantStorageBox: redundantBox,
			BasePathStrip:       "/home",
		},
		Ledger:   newTestLedger(t, "host1"),
		Executor: exec,
		Log:      discardLog(),
	}
}

func TestUploadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := mustWriteFile(t, dir, "file.txt", "contents")

	exec := &fakeExecutor{}
	c := newTestCoordinator(t, exec, nil)

	entries, err := c.Upload(path, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, path, entries[0].Path)
	assert.Equal(t, int64(len("contents")), entries[0].Size)
	assert.Len(t, entries[0].SHA256, 64)
	assert.False(t, entries[0].BackedUp.IsZero())

	require.Len(t, exec.sent, 1)
	assert.Equal(t, "primary.example.net", exec.sent[0].host)

	got, err := c.Ledger.Get(path)
	require.NoError(t, err)
	assert.Equal(t, entries[0], got)
}

func TestUploadDirectoryRecordsAllFiles(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, dir, "a.txt", "aaa")
	mustWriteFile(t, dir, "sub/b.txt", "bbb")

	exec := &fakeExecutor{}
	c := newTestCoordinator(t, exec, nil)

	entries, err := c.Upload(dir, false)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Len(t, exec.sent, 2)

	all, err := c.Ledger.Load()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUploadRedundantSendsToBothTargets(t *testing.T) {
	dir := t.TempDir()
	path := mustWriteFile(t, dir, "file.txt", "contents")

	exec := &fakeExecutor{}
	redundant := &config.StorageBox{Host: "redundant.example.net", User: "u2", Path: "/cold2"}
	c := newTestCoordinator(t, exec, redundant)

	entries, err := c.Upload(path, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Len(t, exec.sent, 2)
	assert.Equal(t, "primary.example.net", exec.sent[0].host)
	assert.Equal(t, "redundant.example.net", exec.sent[1].host)
}

func TestUploadRedundantUnconfiguredFallsBackToPrimary(t *testing.T) {
	dir := t.TempDir()
	path := mustWriteFile(t, dir, "file.txt", "contents")

	exec := &fakeExecutor{}
	c := newTestCoordinator(t, exec, nil)

	_, err := c.Upload(path, true)
	require.NoError(t, err)
	assert.Len(t, exec.sent, 1)
}

// A file is only recorded once every target accepted it: failing the second
// target must leave that file out of the ledger, while files completed
// before the failure stay recorded.
func TestUploadFailureKeepsCompletedPrefix(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, dir, "a.txt", "aaa")
	mustWriteFile(t, dir, "b.txt", "bbb")

	// Four sends expected (2 files x 2 targets); fail on the fourth.
	exec := &fakeExecutor{failAt: 4}
	redundant := &config.StorageBox{Host: "redundant.example.net", User: "u2", Path: "/cold2"}
	c := newTestCoordinator(t, exec, redundant)

	_, err := c.Upload(dir, true)
	require.Error(t, err)

	all, lerr := c.Ledger.Load()
	require.NoError(t, lerr)
	require.Len(t, all, 1)
	assert.Contains(t, all, filepath.Join(dir, "a.txt"))
}

func TestUploadIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := mustWriteFile(t, dir, "file.txt", "contents")

	exec := &fakeExecutor{}
	c := newTestCoordinator(t, exec, nil)

	first, err := c.Upload(path, false)
	require.NoError(t, err)
	second, err := c.Upload(path, false)
	require.NoError(t, err)

	assert.Equal(t, first[0].SHA256, second[0].SHA256)

	all, err := c.Ledger.Load()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUploadMissingPath(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestCoordinator(t, exec, nil)

	_, err := c.Upload(filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
	assert.Empty(t, exec.sent)
}

func TestCollectFilesSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := mustWriteFile(t, dir, "real.txt", "data")
	mustSymlink(t, target, filepath.Join(dir, "link.txt"))

	files, err := CollectFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, files)
}
