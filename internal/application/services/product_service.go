package services

import (
	"context"
	"fmt"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/avatarctic/live-catalog/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// ProductService wraps every catalog write in the same sequence: validate,
// write to the backing store, invalidate and eagerly repopulate the cache,
// then broadcast an invalidation notice. The broadcast always comes after
// repopulation, so a client that re-fetches on the notice observes the
// post-write state rather than racing an empty cache.
type ProductService struct {
	store  ports.ProductStore
	cache  ports.ProductCache
	hub    ports.Broadcaster
	logger *logrus.Logger
}

func NewProductService(store ports.ProductStore, cache ports.ProductCache, hub ports.Broadcaster, logger *logrus.Logger) ports.ProductService {
	return &ProductService{
		store:  store,
		cache:  cache,
		hub:    hub,
		logger: logger,
	}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.cache.Read(ctx), nil
}

// GetProduct bypasses the collection cache and reads the store directly.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, req.ToProduct())
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("name", req.Name).Error("failed to create product")
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": created.ID, "name": created.Name}).Info("product created")
	}

	s.refreshAndNotify(ctx)
	return created, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *product.UpdateProductRequest) (*product.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The store confirms existence before writing; a missing id comes back
	// as product.ErrNotFound, distinct from transient store failures.
	updated, err := s.store.Update(ctx, id, req.ToUpdate())
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithField("id", id).Info("product updated")
	}

	s.refreshAndNotify(ctx)
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*product.Product, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": deleted.ID, "name": deleted.Name}).Info("product deleted")
	}

	s.refreshAndNotify(ctx)
	return deleted, nil
}

// RefreshCache forces the invalidate-repopulate-broadcast cycle without a
// preceding write. Unlike the post-write path, a failed repopulation here is
// the operation's whole purpose, so it propagates.
func (s *ProductService) RefreshCache(ctx context.Context) (int, error) {
	s.cache.Invalidate()
	count, err := s.cache.Repopulate(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh products cache: %w", err)
	}
	s.hub.NotifyAll()
	return count, nil
}

// refreshAndNotify runs after a committed write. Repopulation is best-effort:
// the write already succeeded, so a failure is logged and left for the next
// natural read to repair. The broadcast still goes out either way.
func (s *ProductService) refreshAndNotify(ctx context.Context) {
	s.cache.Invalidate()
	if _, err := s.cache.Repopulate(ctx); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("cache repopulation after write failed")
		}
	}
	delivered := s.hub.NotifyAll()
	if s.logger != nil {
		s.logger.WithField("delivered", delivered).Debug("catalog invalidation broadcast")
	}
}
