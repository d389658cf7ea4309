package colormode

import "sync"

// IconCache maps a mode value to its icon markup. Entries are never
// invalidated; a repeated Put for the same value overwrites it, which is
// harmless because a mode's icon content does not change.
type IconCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewIconCache returns an empty cache. A cache may be shared by several
// controllers.
func NewIconCache() *IconCache {
	return &IconCache{entries: make(map[string]string)}
}

// Get returns the cached markup for value.
func (c *IconCache) Get(value string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	markup, ok := c.entries[value]
	return markup, ok
}

// Put stores markup for value.
func (c *IconCache) Put(value, markup string) {
	c.mu.Lock()
	c.entries[value] = markup
	c.mu.Unlock()
}

// Len returns the number of cached icons.
func (c *IconCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
