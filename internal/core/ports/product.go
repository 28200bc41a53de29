package ports

import (
	"context"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
)

// ProductStore is the boundary to the remote document store holding the
// catalog. It is the authoritative source of truth; identifiers and creation
// timestamps are assigned by the store on Create. Drivers own the coercion of
// any string-typed numeric fields the store keeps, so records crossing this
// boundary are always strictly typed.
type ProductStore interface {
	// List returns the full collection, newest first.
	List(ctx context.Context) ([]product.Product, error)
	// Get returns one record or product.ErrNotFound.
	Get(ctx context.Context, id string) (*product.Product, error)
	// Create persists a new record and returns it with ID and CreatedAt set.
	Create(ctx context.Context, p *product.Product) (*product.Product, error)
	// Update applies the sparse changes to an existing record and returns the
	// post-write state, or product.ErrNotFound.
	Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error)
	// Delete removes a record and returns its last snapshot, or
	// product.ErrNotFound.
	Delete(ctx context.Context, id string) (*product.Product, error)
}

// ProductCache holds the last known full-collection snapshot and serves reads
// without touching the store while the snapshot is fresh.
type ProductCache interface {
	// Read returns the current snapshot, repopulating first if it is missing
	// or expired. It never fails: on a repopulation error it falls back to the
	// previous snapshot, or an empty slice when there is none.
	Read(ctx context.Context) []product.Product
	// Invalidate drops the snapshot's validity so the next Read repopulates.
	// The stale data itself is kept for the failure fallback.
	Invalidate()
	// Repopulate unconditionally fetches from the store and replaces the
	// snapshot, returning the record count.
	Repopulate(ctx context.Context) (int, error)
}

// Broadcaster fans an invalidation notice out to every connected live
// session. Delivery is best-effort; the returned count is observability only.
type Broadcaster interface {
	NotifyAll() int
}

// ProductService is the application surface behind the HTTP handlers: the
// read path plus the write sequence (store write, cache invalidate and
// repopulate, broadcast).
type ProductService interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error)
	UpdateProduct(ctx context.Context, id string, req *product.UpdateProductRequest) (*product.Product, error)
	DeleteProduct(ctx context.Context, id string) (*product.Product, error)
	// RefreshCache forces invalidation, repopulation and a broadcast; it
	// returns the repopulated record count.
	RefreshCache(ctx context.Context) (int, error)
}
