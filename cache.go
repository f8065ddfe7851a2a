package nodle

// CacheManager holds named, per-node caches of NodeData. A node's processor
// may stash expensive-to-recompute byproducts (e.g. a decoded image, a
// tessellated mesh) under its own NodeId in a cache it registers up front.
// The Execution Engine drops a node's entries from its own Cache Manager
// when the node is removed; a node going dirty leaves them in place
// (spec.md §4.5).
type CacheManager struct {
	caches map[string]map[NodeId]NodeData
}

// NewCacheManager creates an empty Cache Manager.
func NewCacheManager() *CacheManager {
	return &CacheManager{caches: make(map[string]map[NodeId]NodeData)}
}

// RegisterCache declares a named cache if it does not already exist. Safe to
// call repeatedly; a no-op if name is already registered.
func (c *CacheManager) RegisterCache(name string) {
	if _, ok := c.caches[name]; !ok {
		c.caches[name] = make(map[NodeId]NodeData)
	}
}

// Get returns the cached value for (cache, node), or ok=false if the cache
// is unregistered or has no entry for node.
func (c *CacheManager) Get(cache string, node NodeId) (NodeData, bool) {
	m, ok := c.caches[cache]
	if !ok {
		return NodeData{}, false
	}
	v, ok := m[node]
	return v, ok
}

// Put stores value under (cache, node), registering cache if needed.
func (c *CacheManager) Put(cache string, node NodeId, value NodeData) {
	c.RegisterCache(cache)
	c.caches[cache][node] = value
}

// InvalidateNode removes node's entry from every registered cache.
func (c *CacheManager) InvalidateNode(node NodeId) {
	for _, m := range c.caches {
		delete(m, node)
	}
}

// Clear empties every registered cache without removing the registrations
// themselves.
func (c *CacheManager) Clear() {
	for name := range c.caches {
		c.caches[name] = make(map[NodeId]NodeData)
	}
}
