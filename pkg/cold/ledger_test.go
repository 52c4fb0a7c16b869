package cold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
)

func newTestLedger(t *testing.T, machine string) *Ledger {
	t.Helper()

	sm, err := permafrost.NewStoreManager(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })

	ledger, err := NewLedger(sm, machine)
	require.NoError(t, err)
	return ledger
}

func TestLedgerTableName(t *testing.T) {
	assert.Equal(t, "host1_cold_checksums", LedgerTable("host1"))
	assert.Equal(t, "web_example_com_cold_checksums", LedgerTable("web.example.com"))
}

func TestLedgerRoundTrip(t *testing.T) {
	ledger := newTestLedger(t, "host1")

	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	entry := Entry{Path: "/home/alice/f", SHA256: "abc123", Size: 42, BackedUp: ts}
	require.NoError(t, ledger.PutAll([]Entry{entry}))

	got, err := ledger.Get("/home/alice/f")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	all, err := ledger.Load()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entry, all["/home/alice/f"])
}

func TestLedgerUpsertReplaces(t *testing.T) {
	ledger := newTestLedger(t, "host1")

	ts := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, ledger.PutAll([]Entry{{Path: "/f", SHA256: "old", Size: 1, BackedUp: ts}}))
	require.NoError(t, ledger.PutAll([]Entry{{Path: "/f", SHA256: "new", Size: 2, BackedUp: ts}}))

	got, err := ledger.Get("/f")
	require.NoError(t, err)
	assert.Equal(t, "new", got.SHA256)
	assert.Equal(t, int64(2), got.Size)

	all, err := ledger.Load()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLedgerGetMissing(t *testing.T) {
	ledger := newTestLedger(t, "host1")

	_, err := ledger.Get("/nope")
	assert.ErrorIs(t, err, permafrost.ErrNoRecord)
}

func TestLedgerPutAllEmpty(t *testing.T) {
	ledger := newTestLedger(t, "host1")
	assert.NoError(t, ledger.PutAll(nil))
}
