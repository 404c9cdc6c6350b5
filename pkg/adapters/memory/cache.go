package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/launchplan/pkg/domain"
)

type entry struct {
	value   string
	expires time.Time
}

// Cache implements ports.ArtifactCache in memory.
// Safe for concurrent use.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewCache creates an in-memory cache. A zero ttl keeps entries forever.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached artifact or domain.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[key]
	if !ok || (!e.expires.IsZero() && c.now().After(e.expires)) {
		return "", domain.ErrCacheMiss
	}
	return e.value, nil
}

// Put stores the artifact.
func (c *Cache) Put(ctx context.Context, key, artifact string) error {
	e := entry{value: artifact}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
