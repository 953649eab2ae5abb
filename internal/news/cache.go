package news

import (
	"container/list"
	"sync"
	"time"
)

const headlinesCacheMaxEntries = 256

type headlinesCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type headlinesCacheEntry struct {
	key       string
	headlines Headlines
	expiresAt time.Time
}

func newHeadlinesCache(maxEntries int) *headlinesCache {
	if maxEntries <= 0 {
		return nil
	}

	return &headlinesCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *headlinesCache) get(key string, now time.Time) (Headlines, bool) {
	if c == nil || key == "" {
		return Headlines{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return Headlines{}, false
	}

	entry := elem.Value.(*headlinesCacheEntry) //nolint:forcetypeassert // Only entries are pushed.
	if now.After(entry.expiresAt) {
		c.remove(elem)

		return Headlines{}, false
	}

	c.order.MoveToFront(elem)

	return entry.headlines, true
}

func (c *headlinesCache) set(key string, headlines Headlines, expiresAt time.Time, now time.Time) {
	if c == nil || key == "" || len(headlines.Items) == 0 || !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*headlinesCacheEntry) //nolint:forcetypeassert // Only entries are pushed.
		entry.headlines = headlines
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	c.entries[key] = c.order.PushFront(&headlinesCacheEntry{
		key:       key,
		headlines: headlines,
		expiresAt: expiresAt,
	})

	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if entry := elem.Value.(*headlinesCacheEntry); now.After(entry.expiresAt) { //nolint:forcetypeassert // Only entries are pushed.
			c.remove(elem)
		}
		elem = prev
	}

	for len(c.entries) > c.maxEntries {
		c.remove(c.order.Back())
	}
}

func (c *headlinesCache) remove(elem *list.Element) {
	entry := elem.Value.(*headlinesCacheEntry) //nolint:forcetypeassert // Only entries are pushed.

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
