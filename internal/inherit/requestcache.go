package inherit

import (
	"context"
	"sync"
	"time"

	"mop/internal/entity"
)

// requestCache is a keyed single-flight cache with TTL. Concurrent callers
// asking for the same key share one in-flight fetch; completed entries are
// served until they expire. Discarding the whole cache never changes
// behavior, it only costs a refetch.
type requestCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	done chan struct{}
	val  *entity.Entity
	err  error
	at   time.Time
}

func newRequestCache(ttl time.Duration) *requestCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &requestCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

func (c *requestCache) get(ctx context.Context, key string, fetch func(ctx context.Context) (*entity.Entity, error)) (*entity.Entity, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		select {
		case <-e.done:
			// completed: reuse unless expired or failed
			if e.err == nil && c.now().Sub(e.at) < c.ttl {
				c.mu.Unlock()
				return e.val, nil
			}
		default:
			// still in flight: join it
			c.mu.Unlock()
			select {
			case <-e.done:
				return e.val, e.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.val, e.err = fetch(ctx)
	e.at = c.now()
	close(e.done)

	if e.err != nil {
		// do not cache failures
		c.drop(key)
	}
	return e.val, e.err
}

func (c *requestCache) drop(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
