// cache.go provides the L1 cache for loaded document templates. Entries are
// keyed by template name; the hot-reload watcher drops an entry when its
// file changes on disk.
package engine

import (
	"log/slog"
	"sync"
)

// templateCache is a concurrency-safe in-memory cache of template sources.
type templateCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func newTemplateCache() *templateCache {
	return &templateCache{entries: make(map[string]string)}
}

// get returns the cached template source and whether it was present.
func (c *templateCache) get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src, ok := c.entries[name]
	return src, ok
}

func (c *templateCache) put(name, src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = src
	slog.Debug("template cached", "name", name, "size", len(c.entries))
}

// invalidate removes one template from the cache.
func (c *templateCache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
	slog.Debug("template cache invalidated", "name", name)
}

// invalidateAll clears the entire cache.
func (c *templateCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	slog.Debug("template cache fully cleared")
}

func (c *templateCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
