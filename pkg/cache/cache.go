// Package cache remembers the last value seen per role and register so the
// bridge only publishes what changed.
package cache

import (
	"sync"
	"time"

	"otmqtt-bridge/pkg/opentherm"
)

// Entry is the last value observed for one register
type Entry struct {
	Raw       uint16    `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
}

// Observation is the outcome of recording one value
type Observation struct {
	FirstSeen bool
	Changed   bool
}

// ChangeCache stores the last raw value per role and register id.
// A key moves from unseen to seen on first observation and only goes back
// through Clear or ClearAll.
type ChangeCache struct {
	mutex   sync.RWMutex
	entries map[opentherm.Role]map[uint8]*Entry
	now     func() time.Time
}

// NewChangeCache creates an empty change cache
func NewChangeCache() *ChangeCache {
	c := &ChangeCache{now: time.Now}
	c.reset()
	return c
}

func (c *ChangeCache) reset() {
	c.entries = make(map[opentherm.Role]map[uint8]*Entry, len(opentherm.Roles))
	for _, role := range opentherm.Roles {
		c.entries[role] = make(map[uint8]*Entry)
	}
}

// Observe records raw for role and id. The first observation of a key is
// reported as both first-seen and changed.
func (c *ChangeCache) Observe(role opentherm.Role, id uint8, raw uint16) Observation {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	byID := c.roleEntries(role)
	entry, exists := byID[id]
	if !exists {
		byID[id] = &Entry{Raw: raw, Timestamp: c.now()}
		return Observation{FirstSeen: true, Changed: true}
	}

	changed := entry.Raw != raw
	entry.Raw = raw
	entry.Timestamp = c.now()
	return Observation{Changed: changed}
}

// Seen reports whether id has been observed for role since the last clear
func (c *ChangeCache) Seen(role opentherm.Role, id uint8) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.entries[role][id]
	return exists
}

// Get returns the last entry for role and id
func (c *ChangeCache) Get(role opentherm.Role, id uint8) (Entry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[role][id]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

// Clear drops every entry of one role
func (c *ChangeCache) Clear(role opentherm.Role) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[role] = make(map[uint8]*Entry)
}

// ClearAll drops every entry of both roles
func (c *ChangeCache) ClearAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.reset()
}

// Len returns the number of registers seen for role
func (c *ChangeCache) Len(role opentherm.Role) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries[role])
}

// Snapshot returns a copy of the last values of role, keyed by register id
func (c *ChangeCache) Snapshot(role opentherm.Role) map[uint8]Entry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[uint8]Entry, len(c.entries[role]))
	for id, entry := range c.entries[role] {
		result[id] = *entry
	}
	return result
}

func (c *ChangeCache) roleEntries(role opentherm.Role) map[uint8]*Entry {
	byID, ok := c.entries[role]
	if !ok {
		byID = make(map[uint8]*Entry)
		c.entries[role] = byID
	}
	return byID
}
