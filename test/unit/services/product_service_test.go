package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/live-catalog/internal/application/services"
	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/avatarctic/live-catalog/test/mocks"
)

func flexFloat(v float64) *product.FlexFloat {
	f := product.FlexFloat(v)
	return &f
}

// recordingDeps wires mocks that append to a shared event log so tests can
// assert the write sequence ordering, not just that each step happened.
func recordingDeps(events *[]string) (*mocks.ProductStoreMock, *mocks.ProductCacheMock, *mocks.BroadcasterMock) {
	store := &mocks.ProductStoreMock{
		CreateFn: func(ctx context.Context, p *product.Product) (*product.Product, error) {
			*events = append(*events, "store.create")
			out := *p
			out.ID = "p-1"
			out.CreatedAt = time.Now()
			return &out, nil
		},
		UpdateFn: func(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
			*events = append(*events, "store.update")
			return &product.Product{ID: id, Name: "Updated"}, nil
		},
		DeleteFn: func(ctx context.Context, id string) (*product.Product, error) {
			*events = append(*events, "store.delete")
			return &product.Product{ID: id, Name: "Deleted"}, nil
		},
	}
	cache := &mocks.ProductCacheMock{
		InvalidateFn: func() { *events = append(*events, "cache.invalidate") },
		RepopulateFn: func(ctx context.Context) (int, error) {
			*events = append(*events, "cache.repopulate")
			return 1, nil
		},
	}
	hub := &mocks.BroadcasterMock{
		NotifyAllFn: func() int {
			*events = append(*events, "hub.notify")
			return 2
		},
	}
	return store, cache, hub
}

func TestCreateProductRunsWriteSequenceInOrder(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	svc := services.NewProductService(store, cache, hub, nil)

	created, err := svc.CreateProduct(context.Background(), &product.CreateProductRequest{
		Name:        "Pen",
		Description: "Blue pen",
		Price:       flexFloat(1.5),
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "p-1", created.ID)
	assert.Equal(t, []string{"store.create", "cache.invalidate", "cache.repopulate", "hub.notify"}, events)
}

func TestUpdateProductRunsWriteSequenceInOrder(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	svc := services.NewProductService(store, cache, hub, nil)

	name := "Updated"
	_, err := svc.UpdateProduct(context.Background(), "p-1", &product.UpdateProductRequest{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, []string{"store.update", "cache.invalidate", "cache.repopulate", "hub.notify"}, events)
}

func TestDeleteProductRunsWriteSequenceInOrder(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	svc := services.NewProductService(store, cache, hub, nil)

	deleted, err := svc.DeleteProduct(context.Background(), "p-1")

	require.NoError(t, err)
	assert.Equal(t, "p-1", deleted.ID)
	assert.Equal(t, []string{"store.delete", "cache.invalidate", "cache.repopulate", "hub.notify"}, events)
}

func TestCreateProductValidationFailureTouchesNothing(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	svc := services.NewProductService(store, cache, hub, nil)

	_, err := svc.CreateProduct(context.Background(), &product.CreateProductRequest{Name: "Pen"})

	require.Error(t, err)
	var verr *product.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, events)
}

func TestUpdateProductNotFoundSkipsRefresh(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	store.UpdateFn = func(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
		return nil, product.ErrNotFound
	}
	svc := services.NewProductService(store, cache, hub, nil)

	name := "Updated"
	_, err := svc.UpdateProduct(context.Background(), "missing", &product.UpdateProductRequest{Name: &name})

	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Empty(t, events)
}

func TestCreateProductRepopulationFailureStillBroadcasts(t *testing.T) {
	var events []string
	store, cache, hub := recordingDeps(&events)
	cache.RepopulateFn = func(ctx context.Context) (int, error) {
		events = append(events, "cache.repopulate")
		return 0, errors.New("store unreachable")
	}
	svc := services.NewProductService(store, cache, hub, nil)

	created, err := svc.CreateProduct(context.Background(), &product.CreateProductRequest{
		Name:        "Pen",
		Description: "Blue pen",
		Price:       flexFloat(1.5),
	})

	// The write committed, so the caller still gets a success and the
	// invalidation notice still goes out.
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, []string{"store.create", "cache.invalidate", "cache.repopulate", "hub.notify"}, events)
}

func TestRefreshCacheReturnsCountAndBroadcasts(t *testing.T) {
	var events []string
	_, cache, hub := recordingDeps(&events)
	cache.RepopulateFn = func(ctx context.Context) (int, error) {
		events = append(events, "cache.repopulate")
		return 7, nil
	}
	svc := services.NewProductService(&mocks.ProductStoreMock{}, cache, hub, nil)

	count, err := svc.RefreshCache(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.Equal(t, []string{"cache.invalidate", "cache.repopulate", "hub.notify"}, events)
}

func TestRefreshCachePropagatesRepopulationError(t *testing.T) {
	var events []string
	_, cache, hub := recordingDeps(&events)
	cache.RepopulateFn = func(ctx context.Context) (int, error) {
		return 0, errors.New("store unreachable")
	}
	svc := services.NewProductService(&mocks.ProductStoreMock{}, cache, hub, nil)

	_, err := svc.RefreshCache(context.Background())

	require.Error(t, err)
	assert.NotContains(t, events, "hub.notify")
}

func TestListProductsServesFromCache(t *testing.T) {
	cache := &mocks.ProductCacheMock{
		ReadFn: func(ctx context.Context) []product.Product {
			return []product.Product{{ID: "p-1", Name: "Pen"}}
		},
	}
	svc := services.NewProductService(&mocks.ProductStoreMock{}, cache, &mocks.BroadcasterMock{}, nil)

	list, err := svc.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pen", list[0].Name)
}
