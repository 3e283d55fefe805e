package compose

import (
	"sync"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/schema"
)

// cacheKey identifies one composed schema: the entity plus the
// enabled-capability bitmask.
type cacheKey struct {
	entity string
	mask   uint64
}

// cache is the process-wide schema cache. Capability selection is fixed
// at build time, so entries are never invalidated within a process.
type cache struct {
	mu      sync.RWMutex
	schemas map[cacheKey]*schema.Composed
}

func newCache() *cache {
	return &cache{schemas: make(map[cacheKey]*schema.Composed)}
}

func (c *cache) get(entity string, set capability.Set) (*schema.Composed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[cacheKey{entity: entity, mask: set.Mask()}]
	return s, ok
}

// put publishes a composed schema, keeping any entry a concurrent
// composition published first. Composition is pure, so a lost race
// produced an identical value and the published pointer stays stable.
func (c *cache) put(entity string, set capability.Set, composed *schema.Composed) *schema.Composed {
	key := cacheKey{entity: entity, mask: set.Mask()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.schemas[key]; ok {
		return existing
	}
	c.schemas[key] = composed
	return composed
}

// Len returns the number of cached schemas.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}

// CacheSize returns the number of schemas currently cached.
func (c *Composer) CacheSize() int {
	return c.cache.Len()
}
