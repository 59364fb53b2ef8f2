package sweeper

import (
	"sync"
	"testing"
	"time"

	"github.com/burrowhq/burrow/pkg/deferred"
	"github.com/burrowhq/burrow/pkg/idempotency"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepEvictsExpiredEntries(t *testing.T) {
	idemStore := idempotency.NewMemoryStore()
	defStore := deferred.NewMemoryStore()

	require.NoError(t, idemStore.Put("expired", types.Result{Status: types.StatusOK}, 10*time.Millisecond))
	require.NoError(t, idemStore.Put("live", types.Result{Status: types.StatusOK}, time.Minute))
	require.NoError(t, defStore.PutPending("tkt_expired", 10*time.Millisecond))

	time.Sleep(25 * time.Millisecond)

	s := NewSweeper(time.Minute,
		Target{Name: "idempotency", Store: idemStore},
		Target{Name: "deferred", Store: defStore},
	)
	s.sweep()

	res, err := idemStore.Get("live")
	require.NoError(t, err)
	assert.NotNil(t, res, "live entries survive a sweep")

	entry, err := defStore.Get("tkt_expired")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

type countingStore struct {
	mu     sync.Mutex
	sweeps int
}

func (c *countingStore) Sweep(_ int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
	return 0
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func TestSweeperStartStop(t *testing.T) {
	store := &countingStore{}

	s := NewSweeper(20*time.Millisecond, Target{Name: "counting", Store: store})
	s.Start()

	assert.Eventually(t, func() bool {
		return store.count() >= 2
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	settled := store.count()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, store.count(), settled+1, "sweeping stops after Stop")
}

func TestNewSweeperDefaultInterval(t *testing.T) {
	s := NewSweeper(0)
	assert.Equal(t, time.Minute, s.interval)
}
