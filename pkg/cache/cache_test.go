package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otmqtt-bridge/pkg/opentherm"
)

func TestObserveLifecycle(t *testing.T) {
	c := NewChangeCache()

	obs := c.Observe(opentherm.Responder, 25, 0x3200)
	assert.True(t, obs.FirstSeen)
	assert.True(t, obs.Changed)

	obs = c.Observe(opentherm.Responder, 25, 0x3200)
	assert.False(t, obs.FirstSeen)
	assert.False(t, obs.Changed)

	obs = c.Observe(opentherm.Responder, 25, 0x3300)
	assert.False(t, obs.FirstSeen)
	assert.True(t, obs.Changed)

	entry, ok := c.Get(opentherm.Responder, 25)
	require.True(t, ok)
	assert.Equal(t, uint16(0x3300), entry.Raw)

	c.ClearAll()
	obs = c.Observe(opentherm.Responder, 25, 0x3300)
	assert.True(t, obs.FirstSeen)
}

func TestRolesAreIndependent(t *testing.T) {
	c := NewChangeCache()

	assert.True(t, c.Observe(opentherm.Controller, 1, 10).FirstSeen)
	assert.True(t, c.Observe(opentherm.Responder, 1, 10).FirstSeen)
	assert.True(t, c.Seen(opentherm.Controller, 1))

	c.Clear(opentherm.Controller)
	assert.False(t, c.Seen(opentherm.Controller, 1))
	assert.True(t, c.Seen(opentherm.Responder, 1))
	assert.Equal(t, 0, c.Len(opentherm.Controller))
	assert.Equal(t, 1, c.Len(opentherm.Responder))
}

func TestSnapshotIsCopy(t *testing.T) {
	c := NewChangeCache()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.Observe(opentherm.Responder, 25, 0x3200)
	snap := c.Snapshot(opentherm.Responder)
	require.Len(t, snap, 1)
	assert.Equal(t, Entry{Raw: 0x3200, Timestamp: fixed}, snap[25])

	c.Observe(opentherm.Responder, 25, 0x3300)
	assert.Equal(t, uint16(0x3200), snap[25].Raw)
}

func TestConcurrentObserve(t *testing.T) {
	c := NewChangeCache()

	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Observe(opentherm.Controller, 7, 1).FirstSeen {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, firsts)
}
