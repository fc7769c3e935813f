package strategy

import (
	"sync/atomic"

	"github.com/racelab/pitwall/core"
)

// Cache holds the single current recommendation. The orchestrator is the only
// writer (at most once per lap); display and persistence consumers may read
// concurrently. An atomic swap of an immutable snapshot is all the discipline
// required; there is no multi-step mutation.
type Cache struct {
	current atomic.Pointer[core.Recommendation]
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Set replaces the current recommendation. The stored value is overwritten,
// never merged.
func (c *Cache) Set(rec core.Recommendation) {
	c.current.Store(&rec)
}

// Current returns the stored recommendation as produced, or nil before the
// first Set. The returned pointer must be treated as immutable.
func (c *Cache) Current() *core.Recommendation {
	return c.current.Load()
}

// Serve returns a copy of the current recommendation marked as served from
// cache. ProducedAtLap keeps the lap the recommendation was actually made on.
func (c *Cache) Serve() (core.Recommendation, bool) {
	cur := c.current.Load()
	if cur == nil {
		return core.Recommendation{}, false
	}
	out := *cur
	out.Source = core.SourceCached
	return out, true
}
