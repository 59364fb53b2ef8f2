package deferred

import (
	"testing"
	"time"

	"github.com/burrowhq/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.PutPending("tkt_1", time.Minute))

	entry, err := store.Get("tkt_1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Pending())

	final := types.Result{
		Status: types.StatusOK,
		Meta:   types.Meta{RequestID: "req_1", ProviderName: "demo_provider"},
		Data:   "answer",
	}
	require.NoError(t, store.Complete("tkt_1", final, time.Minute))

	entry, err = store.Get("tkt_1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Pending())
	assert.Equal(t, final, *entry.Result)
}

func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore()

	entry, err := store.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.PutPending("tkt_1", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	entry, err := store.Get("tkt_1")
	require.NoError(t, err)
	assert.Nil(t, entry, "expired ticket must read as absent")
}

func TestMemoryStoreCompleteRefreshesTTL(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.PutPending("tkt_1", 10*time.Millisecond))
	require.NoError(t, store.Complete("tkt_1", types.Result{Status: types.StatusOK}, time.Minute))

	time.Sleep(25 * time.Millisecond)

	entry, err := store.Get("tkt_1")
	require.NoError(t, err)
	require.NotNil(t, entry, "completion must refresh the TTL")
	assert.False(t, entry.Pending())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.PutPending("expired", 10*time.Millisecond))
	require.NoError(t, store.PutPending("live", time.Minute))

	time.Sleep(25 * time.Millisecond)

	evicted := store.Sweep(types.NowMS())
	assert.Equal(t, 1, evicted)

	entry, err := store.Get("live")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}
