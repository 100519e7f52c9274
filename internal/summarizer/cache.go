package summarizer

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type resultCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
}

type resultCacheEntry struct {
	key       string
	text      string
	expiresAt time.Time
}

func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}

	return &resultCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func cacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *resultCache) get(model, prompt string, now time.Time) (string, bool) {
	if c == nil {
		return "", false
	}

	key := cacheKey(model, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*resultCacheEntry)
	if now.After(entry.expiresAt) {
		c.remove(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.text, true
}

func (c *resultCache) set(model, prompt, text string, now time.Time) {
	if c == nil || text == "" {
		return
	}

	key := cacheKey(model, prompt)
	expiresAt := now.Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*resultCacheEntry)
		entry.text = text
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	c.entries[key] = c.order.PushFront(&resultCacheEntry{
		key:       key,
		text:      text,
		expiresAt: expiresAt,
	})

	c.evictExpiredLocked(now)
	for len(c.entries) > c.maxEntries {
		c.remove(c.order.Back())
	}
}

func (c *resultCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*resultCacheEntry).expiresAt) {
			c.remove(elem)
		}
		elem = prev
	}
}

func (c *resultCache) remove(elem *list.Element) {
	delete(c.entries, elem.Value.(*resultCacheEntry).key)
	c.order.Remove(elem)
}

func (c *resultCache) size() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
