package store

import (
	"context"
	"strconv"
	"time"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps each product in a hash under {prefix}:product:{id} and a
// sorted set {prefix}:index scored by creation time for newest-first listing.
// Hash values are strings, so the same boundary coercion as the Firestore
// driver applies on the way out.
type RedisStore struct {
	r      redis.Cmdable
	prefix string
	logger *logrus.Logger
	now    func() time.Time
}

func NewRedisStore(r redis.Cmdable, prefix string, logger *logrus.Logger) *RedisStore {
	if prefix == "" {
		prefix = "catalog"
	}
	return &RedisStore{r: r, prefix: prefix, logger: logger, now: time.Now}
}

func (s *RedisStore) productKey(id string) string { return s.prefix + ":product:" + id }
func (s *RedisStore) indexKey() string            { return s.prefix + ":index" }

func (s *RedisStore) List(ctx context.Context) ([]product.Product, error) {
	ids, err := s.r.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, &product.StoreError{Op: "list", Err: err}
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		fields, err := s.r.HGetAll(ctx, s.productKey(id)).Result()
		if err != nil {
			return nil, &product.StoreError{Op: "list", Err: err}
		}
		if len(fields) == 0 {
			// Index entry without a hash: a partially deleted record. Skip it
			// and let the next delete pass clean the index.
			if s.logger != nil {
				s.logger.WithField("id", id).Warn("dangling catalog index entry")
			}
			continue
		}
		out = append(out, s.toProduct(id, fields))
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*product.Product, error) {
	fields, err := s.r.HGetAll(ctx, s.productKey(id)).Result()
	if err != nil {
		return nil, &product.StoreError{Op: "get", Err: err}
	}
	if len(fields) == 0 {
		return nil, product.ErrNotFound
	}
	rec := s.toProduct(id, fields)
	return &rec, nil
}

func (s *RedisStore) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	rec := *p
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()

	pipe := s.r.TxPipeline()
	pipe.HSet(ctx, s.productKey(rec.ID), s.toFields(&rec))
	pipe.ZAdd(ctx, s.indexKey(), &redis.Z{
		Score:  float64(rec.CreatedAt.UnixNano()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &product.StoreError{Op: "create", Err: err}
	}
	return &rec, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes.Apply(existing)
	if err := s.r.HSet(ctx, s.productKey(id), s.toFields(existing)).Err(); err != nil {
		return nil, &product.StoreError{Op: "update", Err: err}
	}
	return existing, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) (*product.Product, error) {
	snapshot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pipe := s.r.TxPipeline()
	pipe.Del(ctx, s.productKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &product.StoreError{Op: "delete", Err: err}
	}
	return snapshot, nil
}

func (s *RedisStore) toFields(p *product.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       formatFloat(p.Price),
		"currency":    p.Currency,
		"stock":       strconv.Itoa(p.Stock),
		"category":    p.Category,
		"brand":       p.Brand,
		"rating":      formatFloat(p.Rating),
		"created_at":  p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *RedisStore) toProduct(id string, fields map[string]string) product.Product {
	rec := product.Product{
		ID:          id,
		Name:        fields["name"],
		Description: fields["description"],
		Price:       parseFloatOrZero(fields["price"]),
		Currency:    fields["currency"],
		Stock:       parseIntOrZero(fields["stock"]),
		Category:    fields["category"],
		Brand:       fields["brand"],
		Rating:      parseFloatOrZero(fields["rating"]),
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		rec.CreatedAt = t
	}
	return rec
}
