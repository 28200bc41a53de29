package health

import (
	"context"
	"errors"

	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/avatarctic/live-catalog/internal/core/ports"
	infraDB "github.com/avatarctic/live-catalog/internal/infrastructure/db"
	"github.com/go-redis/redis/v8"
)

// storeHealthChecker probes whatever driver backs the catalog by fetching a
// well-known absent id; a clean not-found means the store is reachable.
type storeHealthChecker struct{ store ports.ProductStore }

func (s *storeHealthChecker) Name() string { return "store" }
func (s *storeHealthChecker) Check(ctx context.Context) error {
	_, err := s.store.Get(ctx, "health-probe")
	if err == nil || errors.Is(err, product.ErrNotFound) {
		return nil
	}
	return err
}

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewStoreHealthChecker probes the active catalog store driver.
func NewStoreHealthChecker(store ports.ProductStore) ports.HealthChecker {
	return &storeHealthChecker{store: store}
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
