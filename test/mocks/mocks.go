package mocks

import (
	"context"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
)

// ProductStoreMock is a lightweight mock for ports.ProductStore
type ProductStoreMock struct {
	ListFn   func(ctx context.Context) ([]product.Product, error)
	GetFn    func(ctx context.Context, id string) (*product.Product, error)
	CreateFn func(ctx context.Context, p *product.Product) (*product.Product, error)
	UpdateFn func(ctx context.Context, id string, changes *product.Update) (*product.Product, error)
	DeleteFn func(ctx context.Context, id string) (*product.Product, error)
}

func (m *ProductStoreMock) List(ctx context.Context) ([]product.Product, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}
func (m *ProductStoreMock) Get(ctx context.Context, id string) (*product.Product, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, product.ErrNotFound
}
func (m *ProductStoreMock) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	out := *p
	out.ID = "mock-id"
	return &out, nil
}
func (m *ProductStoreMock) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, changes)
	}
	return nil, product.ErrNotFound
}
func (m *ProductStoreMock) Delete(ctx context.Context, id string) (*product.Product, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil, product.ErrNotFound
}

// ProductCacheMock is a lightweight mock for ports.ProductCache
type ProductCacheMock struct {
	ReadFn       func(ctx context.Context) []product.Product
	InvalidateFn func()
	RepopulateFn func(ctx context.Context) (int, error)
}

func (m *ProductCacheMock) Read(ctx context.Context) []product.Product {
	if m.ReadFn != nil {
		return m.ReadFn(ctx)
	}
	return []product.Product{}
}
func (m *ProductCacheMock) Invalidate() {
	if m.InvalidateFn != nil {
		m.InvalidateFn()
	}
}
func (m *ProductCacheMock) Repopulate(ctx context.Context) (int, error) {
	if m.RepopulateFn != nil {
		return m.RepopulateFn(ctx)
	}
	return 0, nil
}

// BroadcasterMock is a lightweight mock for ports.Broadcaster
type BroadcasterMock struct {
	NotifyAllFn func() int
}

func (m *BroadcasterMock) NotifyAll() int {
	if m.NotifyAllFn != nil {
		return m.NotifyAllFn()
	}
	return 0
}

// ProductServiceMock is a lightweight mock for ports.ProductService
type ProductServiceMock struct {
	ListProductsFn  func(ctx context.Context) ([]product.Product, error)
	GetProductFn    func(ctx context.Context, id string) (*product.Product, error)
	CreateProductFn func(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error)
	UpdateProductFn func(ctx context.Context, id string, req *product.UpdateProductRequest) (*product.Product, error)
	DeleteProductFn func(ctx context.Context, id string) (*product.Product, error)
	RefreshCacheFn  func(ctx context.Context) (int, error)
}

func (m *ProductServiceMock) ListProducts(ctx context.Context) ([]product.Product, error) {
	if m.ListProductsFn != nil {
		return m.ListProductsFn(ctx)
	}
	return []product.Product{}, nil
}
func (m *ProductServiceMock) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	if m.GetProductFn != nil {
		return m.GetProductFn(ctx, id)
	}
	return nil, product.ErrNotFound
}
func (m *ProductServiceMock) CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error) {
	if m.CreateProductFn != nil {
		return m.CreateProductFn(ctx, req)
	}
	return req.ToProduct(), nil
}
func (m *ProductServiceMock) UpdateProduct(ctx context.Context, id string, req *product.UpdateProductRequest) (*product.Product, error) {
	if m.UpdateProductFn != nil {
		return m.UpdateProductFn(ctx, id, req)
	}
	return nil, product.ErrNotFound
}
func (m *ProductServiceMock) DeleteProduct(ctx context.Context, id string) (*product.Product, error) {
	if m.DeleteProductFn != nil {
		return m.DeleteProductFn(ctx, id)
	}
	return nil, product.ErrNotFound
}
func (m *ProductServiceMock) RefreshCache(ctx context.Context) (int, error) {
	if m.RefreshCacheFn != nil {
		return m.RefreshCacheFn(ctx)
	}
	return 0, nil
}
