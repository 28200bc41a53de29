package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/google/uuid"
)

// MemoryStore is an in-process ProductStore used for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]product.Product
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]product.Product),
		now:      time.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	// Newest first, id as a stable tie-breaker.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	rec := *p
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()

	s.mu.Lock()
	s.products[rec.ID] = rec
	s.mu.Unlock()
	return &rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	changes.Apply(&rec)
	s.products[id] = rec
	return &rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	delete(s.products, id)
	return &rec, nil
}
