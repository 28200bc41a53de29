package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PostgresStore backs the catalog with a products table. Unlike the document
// store drivers, columns are properly typed, so no boundary coercion is
// needed here.
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sqlx.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger, now: time.Now}
}

const productColumns = `id, name, description, price, currency, stock, category, brand, rating, created_at`

func (s *PostgresStore) List(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id`
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, &product.StoreError{Op: "list", Err: err}
	}
	if out == nil {
		out = []product.Product{}
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*product.Product, error) {
	var rec product.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if err := s.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, &product.StoreError{Op: "get", Err: err}
	}
	return &rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	rec := *p
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()

	query := `INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :description, :price, :currency, :stock, :category, :brand, :rating, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, &rec); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to insert product")
		}
		return nil, &product.StoreError{Op: "create", Err: err}
	}
	return &rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes.Apply(existing)

	query := `UPDATE products SET
			name = :name, description = :description, price = :price,
			currency = :currency, stock = :stock, category = :category,
			brand = :brand, rating = :rating
		WHERE id = :id`
	if _, err := s.db.NamedExecContext(ctx, query, existing); err != nil {
		return nil, &product.StoreError{Op: "update", Err: err}
	}
	return existing, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (*product.Product, error) {
	snapshot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return nil, &product.StoreError{Op: "delete", Err: err}
	}
	return snapshot, nil
}
