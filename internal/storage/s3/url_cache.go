package s3

import (
	"strings"
	"sync"
	"time"
)

type cachedURL struct {
	url     string
	expires time.Time
}

// urlCache holds presigned download URLs. An entry is served only while at
// least minRemaining of its lifetime is left.
type urlCache struct {
	mu           sync.RWMutex
	entries      map[string]cachedURL
	minRemaining time.Duration
	now          func() time.Time
}

func newURLCache(minRemaining time.Duration) *urlCache {
	return &urlCache{
		entries:      make(map[string]cachedURL),
		minRemaining: minRemaining,
		now:          time.Now,
	}
}

func (c *urlCache) get(key string) (string, time.Time, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found || c.now().Add(c.minRemaining).After(entry.expires) {
		return "", time.Time{}, false
	}
	return entry.url, entry.expires, true
}

// set stores the URL and sweeps expired entries.
func (c *urlCache) set(key, url string, expires time.Time) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedURL{url: url, expires: expires}
}

func (c *urlCache) delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *urlCache) deletePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
