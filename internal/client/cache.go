package client

import "sync"

// InsightCache remembers the insight shown for each partner so reopening a
// conversation does not ask the server again. It lives as long as the Chat.
type InsightCache struct {
	mu sync.Mutex
	m  map[int64]Insight
}

func NewInsightCache() *InsightCache {
	return &InsightCache{m: make(map[int64]Insight)}
}

func (c *InsightCache) Get(partnerID int64) (Insight, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	in, ok := c.m[partnerID]
	return in, ok
}

func (c *InsightCache) Put(partnerID int64, in Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[partnerID] = in
}

func (c *InsightCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}
