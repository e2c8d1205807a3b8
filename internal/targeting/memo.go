package targeting

import "github.com/sawtelle/boatsinker/internal/model"

// memoCache is a small capacity-bounded cache from board fingerprint
// to per-cell placement weights, grounded on the hash-keyed,
// capacity-evicting memo cache pattern used for expensive lookahead
// computations in the wider example pack. Eviction is FIFO rather than
// LRU: placement weights are cheap to recompute and the cache only
// exists to skip repeat work within a single stretch of a player's
// turns, not to optimize a long-running hit rate.
type memoCache struct {
	capacity int
	order    []string
	entries  map[string]map[model.Coordinate]int
}

func newMemoCache(capacity int) *memoCache {
	return &memoCache{capacity: capacity, entries: make(map[string]map[model.Coordinate]int)}
}

func (c *memoCache) get(key string) (map[model.Coordinate]int, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *memoCache) put(key string, value map[model.Coordinate]int) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
		if len(c.order) > c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = value
}
