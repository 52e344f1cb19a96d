package urlcache

import "sync"

// Cache memoises raw HTTP response bodies keyed by the exact request URL.
// It is scoped to a single run: construct one in the command wiring, hand it
// to the clients that want it and let it go at the end of the run.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func New() *Cache {
	return &Cache{
		entries: make(map[string][]byte),
	}
}

func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[url]
	return body, ok
}

func (c *Cache) Set(url string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = body
}

// Len reports the number of cached responses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
