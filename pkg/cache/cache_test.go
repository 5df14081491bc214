package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSqliteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "food_items", []byte(`[{"name":"milk"}]`)))

	value, found, err := store.Get(ctx, "food_items")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[{"name":"milk"}]`, string(value))
}

func TestSqliteStoreSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "key", []byte("one")))
	require.NoError(t, store.Set(ctx, "key", []byte("two")))

	value, found, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "two", string(value))
}

func TestSqliteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "key", []byte("value")))
	require.NoError(t, store.Delete(ctx, "key"))

	_, found, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, "key"))
}

func TestJSONHelpersRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	type snapshot struct {
		Name  string  `json:"name"`
		Count int     `json:"count"`
		Value float64 `json:"value"`
	}

	require.NoError(t, SetJSON(ctx, store, "snap", snapshot{Name: "milk", Count: 2, Value: 3.5}))

	var decoded snapshot
	found, err := GetJSON(ctx, store, "snap", &decoded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snapshot{Name: "milk", Count: 2, Value: 3.5}, decoded)
}

func TestGetJSONMissingKeyIsMiss(t *testing.T) {
	store := newTestStore(t)

	var decoded map[string]any
	found, err := GetJSON(context.Background(), store, "missing", &decoded)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSONUndecodableContentIsMiss(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, "snap", []byte("not json")))

	var decoded []string
	found, err := GetJSON(ctx, store, "snap", &decoded)
	require.NoError(t, err)
	assert.False(t, found)
}
