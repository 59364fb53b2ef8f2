package idempotency

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()

	db, err := bolt.Open(filepath.Join(t.TempDir(), "burrow.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltStorePutGet(t *testing.T) {
	store, err := NewBoltStore(openTestDB(t))
	require.NoError(t, err)

	require.NoError(t, store.Put("K", okResult("hello"), time.Minute))

	res, err := store.Get("K")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "hello", res.Data)
}

func TestBoltStoreGetMiss(t *testing.T) {
	store, err := NewBoltStore(openTestDB(t))
	require.NoError(t, err)

	res, err := store.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestBoltStoreExpiry(t *testing.T) {
	store, err := NewBoltStore(openTestDB(t))
	require.NoError(t, err)

	require.NoError(t, store.Put("K", okResult("hello"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	res, err := store.Get("K")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestBoltStoreLockLifecycle(t *testing.T) {
	store, err := NewBoltStore(openTestDB(t))
	require.NoError(t, err)

	acquired, err := store.Lock("K", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = store.Lock("K", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, store.Unlock("K"))

	acquired, err = store.Lock("K", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}
