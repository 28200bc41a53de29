package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/avatarctic/live-catalog/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// ProductsCache implements ports.ProductCache with a single full-collection
// snapshot guarded by a mutex. The snapshot is replaced whole on every
// repopulation, never mutated field by field, so concurrent readers observe
// either the old or the new snapshot.
type ProductsCache struct {
	store  ports.ProductStore
	ttl    time.Duration
	logger *logrus.Logger
	now    func() time.Time

	mu        sync.Mutex
	snapshot  []product.Product
	fetchedAt time.Time // zero value means the snapshot is invalid
}

// New builds the cache around the given store. ttl bounds snapshot age;
// reads past it go back to the store.
func New(store ports.ProductStore, ttl time.Duration, logger *logrus.Logger) *ProductsCache {
	return &ProductsCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Read returns the current snapshot, repopulating first when it is missing or
// older than the TTL. It never returns an error: a failed repopulation falls
// back to the previous snapshot, or to an empty list when there is none.
func (c *ProductsCache) Read(ctx context.Context) []product.Product {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		snap := c.snapshot
		c.mu.Unlock()
		cacheHits.Inc()
		return snap
	}
	prev := c.snapshot
	c.mu.Unlock()
	cacheMisses.Inc()

	if _, err := c.Repopulate(ctx); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("products cache repopulation failed, serving stale snapshot")
		}
		if prev != nil {
			return prev
		}
		return []product.Product{}
	}

	c.mu.Lock()
	snap := c.snapshot
	c.mu.Unlock()
	return snap
}

// Invalidate forces the next Read back to the store. The stale snapshot is
// kept so Read can still degrade gracefully if that fetch fails.
func (c *ProductsCache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("products cache invalidated")
	}
}

// Repopulate fetches the full collection and swaps it in with a fresh
// timestamp. The store call runs outside the lock so readers of a still-valid
// snapshot are never blocked behind a slow store.
func (c *ProductsCache) Repopulate(ctx context.Context) (int, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("repopulate products cache: %w", err)
	}

	c.mu.Lock()
	c.snapshot = items
	c.fetchedAt = c.now()
	c.mu.Unlock()

	cacheRefreshes.Inc()
	if c.logger != nil {
		c.logger.WithField("count", len(items)).Debug("products cache repopulated")
	}
	return len(items), nil
}
