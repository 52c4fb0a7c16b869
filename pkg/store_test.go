package permafrost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *TypeStore[testRecord] {
	t.Helper()

	sm, err := NewStoreManager(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })

	store, err := NewTypeStore[testRecord](sm, "test_records")
	require.NoError(t, err)
	return store
}

func TestTypeStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("a", testRecord{Name: "alpha", Count: 3}))

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestTypeStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestTypeStoreUpsert(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("a", testRecord{Name: "first"}))
	require.NoError(t, store.Set("a", testRecord{Name: "second"}))

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTypeStoreSetMany(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetMany(map[string]testRecord{
		"a": {Name: "alpha"},
		"b": {Name: "beta"},
	}))

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "beta", all["b"].Name)
}

func TestTypeStoreDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("a", testRecord{Name: "alpha"}))
	require.NoError(t, store.Delete("a"))

	_, err := store.Get("a")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestTypeStoreRejectsBadTableName(t *testing.T) {
	sm, err := NewStoreManager(":memory:")
	require.NoError(t, err)
	defer sm.Close()

	_, err = NewTypeStore[testRecord](sm, "bad; DROP TABLE x")
	assert.Error(t, err)
}

func TestSanitizeTableName(t *testing.T) {
	assert.Equal(t, "web_example_com", SanitizeTableName("web.example.com"))
	assert.Equal(t, "host1", SanitizeTableName("host1"))
	assert.Equal(t, "my_box_2", SanitizeTableName("my box-2"))
}
