package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type storeMock struct {
	listFn    func(ctx context.Context) ([]product.Product, error)
	listCalls int
}

func (m *storeMock) List(ctx context.Context) ([]product.Product, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *storeMock) Get(ctx context.Context, id string) (*product.Product, error) {
	return nil, product.ErrNotFound
}
func (m *storeMock) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	return p, nil
}
func (m *storeMock) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	return nil, product.ErrNotFound
}
func (m *storeMock) Delete(ctx context.Context, id string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func fixedProducts(names ...string) []product.Product {
	out := make([]product.Product, 0, len(names))
	for _, n := range names {
		out = append(out, product.Product{ID: "id-" + n, Name: n})
	}
	return out
}

func newTestCache(store *storeMock, ttl time.Duration) (*ProductsCache, *time.Time) {
	c := New(store, ttl, logrus.New())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestRead_WithinTTL_SkipsStore(t *testing.T) {
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		return fixedProducts("pen"), nil
	}}
	c, now := newTestCache(store, 5*time.Minute)

	first := c.Read(context.Background())
	require.Len(t, first, 1)
	require.Equal(t, 1, store.listCalls)

	*now = now.Add(4 * time.Minute)
	second := c.Read(context.Background())
	require.Len(t, second, 1)
	require.Equal(t, 1, store.listCalls, "read within TTL must not call the store")
}

func TestRead_PastTTL_RefetchesOnce(t *testing.T) {
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		return fixedProducts("pen", "pad"), nil
	}}
	c, now := newTestCache(store, 5*time.Minute)

	c.Read(context.Background())
	require.Equal(t, 1, store.listCalls)

	*now = now.Add(5 * time.Minute)
	items := c.Read(context.Background())
	require.Len(t, items, 2)
	require.Equal(t, 2, store.listCalls, "read at TTL issues exactly one store call")

	// Timestamp was refreshed: the next read is a hit again.
	*now = now.Add(time.Minute)
	c.Read(context.Background())
	require.Equal(t, 2, store.listCalls)
}

func TestInvalidate_StoreReachable_ReturnsFresh(t *testing.T) {
	items := fixedProducts("pen")
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		return items, nil
	}}
	c, _ := newTestCache(store, 5*time.Minute)

	c.Read(context.Background())
	items = fixedProducts("pen", "pad")
	c.Invalidate()

	got := c.Read(context.Background())
	require.Len(t, got, 2, "invalidate-then-read must observe post-invalidation state")
	require.Equal(t, 2, store.listCalls)
}

func TestInvalidate_StoreDown_ServesStaleSnapshot(t *testing.T) {
	healthy := true
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		if !healthy {
			return nil, errors.New("store unreachable")
		}
		return fixedProducts("pen"), nil
	}}
	c, _ := newTestCache(store, 5*time.Minute)

	before := c.Read(context.Background())
	require.Len(t, before, 1)

	healthy = false
	c.Invalidate()
	after := c.Read(context.Background())
	require.Equal(t, before, after, "stale snapshot must be returned unchanged")
}

func TestRead_ColdCacheStoreDown_ReturnsEmpty(t *testing.T) {
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		return nil, errors.New("store unreachable")
	}}
	c, _ := newTestCache(store, 5*time.Minute)

	got := c.Read(context.Background())
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestRepopulate_ReplacesSnapshotAndCount(t *testing.T) {
	store := &storeMock{listFn: func(ctx context.Context) ([]product.Product, error) {
		return fixedProducts("a", "b", "c"), nil
	}}
	c, _ := newTestCache(store, 5*time.Minute)

	count, err := c.Repopulate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Len(t, c.Read(context.Background()), 3)
	require.Equal(t, 1, store.listCalls, "read after repopulation is a cache hit")
}
