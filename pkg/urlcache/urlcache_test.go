package urlcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	cache := New()

	_, ok := cache.Get("https://example.com/a")
	assert.False(t, ok)

	cache.Set("https://example.com/a", []byte("payload"))
	body, ok := cache.Get("https://example.com/a")
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), body)
	assert.Equal(t, 1, cache.Len())

	cache.Set("https://example.com/a", []byte("updated"))
	body, _ = cache.Get("https://example.com/a")
	assert.Equal(t, []byte("updated"), body)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/%d", i%10)
			cache.Set(url, []byte("x"))
			cache.Get(url)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, cache.Len())
}
