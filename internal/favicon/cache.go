// Package favicon derives favicon URLs for item domains.
package favicon

import (
	"net/url"
	"sync"
)

// faviconEndpoint is the Google favicon service URL template base.
const faviconEndpoint = "https://www.google.com/s2/favicons"

// faviconSize is the requested favicon pixel size.
const faviconSize = "64"

// Cache maps a domain to its derived favicon URL. Entries are populated
// lazily on first lookup and never invalidated: the URL is a pure function
// of the domain, so entries cannot go stale.
type Cache struct {
	mu   sync.RWMutex
	urls map[string]string
}

// NewCache creates an empty favicon cache.
func NewCache() *Cache {
	return &Cache{urls: make(map[string]string)}
}

// URL returns the favicon URL for domain, computing and caching it on the
// first lookup. An empty domain yields an empty URL.
func (c *Cache) URL(domain string) string {
	if domain == "" {
		return ""
	}

	c.mu.RLock()
	cached, ok := c.urls[domain]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	derived := faviconEndpoint + "?domain=" + url.QueryEscape(domain) + "&sz=" + faviconSize

	c.mu.Lock()
	c.urls[domain] = derived
	c.mu.Unlock()

	return derived
}

// Len returns the number of cached domains.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.urls)
}
