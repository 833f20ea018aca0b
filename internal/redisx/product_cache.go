package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notFoundMarker = "notfound"

// ProductCache is a read-through cache in front of a ProductStore. Redis
// failures fall back to the store. Writes go to the store first and then
// overwrite the cached product; reads only fill keys that are absent, so a
// slow read never replaces what a writer stored.
type ProductCache struct {
	Store inventory.ProductStore
	Redis *redis.Client
	Log   *zap.Logger
}

func (c *ProductCache) GetProduct(ctx context.Context, id string) (inventory.Product, error) {
	key := fmt.Sprintf(KeyProduct, id)
	data, err := c.Redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return inventory.Product{}, fmt.Errorf("%w: product %s", inventory.ErrNotFound, id)
		}
		var p inventory.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		c.Log.Warn("bad cached product, reading store", zap.String("key", key))
		_ = c.Redis.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		c.Log.Warn("redis get failed, reading store", zap.String("key", key), zap.Error(err))
	}

	p, err := c.Store.GetProduct(ctx, id)
	if errors.Is(err, inventory.ErrNotFound) {
		c.fill(ctx, key, []byte(notFoundMarker), TTLNotFound)
		return p, err
	}
	if err != nil {
		return p, err
	}
	if b, err := json.Marshal(p); err == nil {
		c.fill(ctx, key, b, TTLProductCache)
	}
	return p, nil
}

func (c *ProductCache) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return c.list(ctx, KeyProductsAll, c.Store.ListProducts)
}

func (c *ProductCache) ListLowStock(ctx context.Context) ([]inventory.Product, error) {
	return c.list(ctx, KeyProductsLowStock, c.Store.ListLowStock)
}

// list reads the generation before loading, so a load that overlaps a write
// is filled under the old generation.
func (c *ProductCache) list(ctx context.Context, pattern string, load func(context.Context) ([]inventory.Product, error)) ([]inventory.Product, error) {
	gen, err := c.Redis.Get(ctx, KeyProductsGen).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.Log.Warn("redis get failed, reading store", zap.String("key", KeyProductsGen), zap.Error(err))
		return load(ctx)
	}
	key := fmt.Sprintf(pattern, gen)

	data, err := c.Redis.Get(ctx, key).Bytes()
	if err == nil {
		var ps []inventory.Product
		if json.Unmarshal(data, &ps) == nil {
			return ps, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.Log.Warn("redis get failed, reading store", zap.String("key", key), zap.Error(err))
	}

	ps, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(ps); err == nil {
		c.fill(ctx, key, b, TTLProductCache)
	}
	return ps, nil
}

func (c *ProductCache) fill(ctx context.Context, key string, v []byte, ttl time.Duration) {
	if err := c.Redis.SetNX(ctx, key, v, ttl).Err(); err != nil {
		c.Log.Warn("redis fill failed", zap.String("key", key), zap.Error(err))
	}
}

// written stores the product state a writer just persisted and retires the
// cached lists.
func (c *ProductCache) written(ctx context.Context, id string, v []byte, ttl time.Duration) {
	key := fmt.Sprintf(KeyProduct, id)
	_, err := c.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, v, ttl)
		pipe.Incr(ctx, KeyProductsGen)
		return nil
	})
	if err != nil {
		c.Log.Warn("redis write-through failed", zap.String("key", key), zap.Error(err))
		c.drop(ctx, id)
	}
}

func (c *ProductCache) drop(ctx context.Context, id string) {
	key := fmt.Sprintf(KeyProduct, id)
	if err := c.Redis.Del(ctx, key).Err(); err != nil {
		c.Log.Warn("redis invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *ProductCache) InsertProduct(ctx context.Context, p inventory.Product) error {
	if err := c.Store.InsertProduct(ctx, p); err != nil {
		return err
	}
	c.writeProduct(ctx, p)
	return nil
}

func (c *ProductCache) UpdateProduct(ctx context.Context, p inventory.Product) error {
	if err := c.Store.UpdateProduct(ctx, p); err != nil {
		// the store may or may not hold p now
		c.drop(ctx, p.ID)
		return err
	}
	c.writeProduct(ctx, p)
	return nil
}

func (c *ProductCache) DeleteProduct(ctx context.Context, id string) error {
	if err := c.Store.DeleteProduct(ctx, id); err != nil {
		c.drop(ctx, id)
		return err
	}
	c.written(ctx, id, []byte(notFoundMarker), TTLNotFound)
	return nil
}

func (c *ProductCache) writeProduct(ctx context.Context, p inventory.Product) {
	b, err := json.Marshal(p)
	if err != nil {
		c.Log.Warn("marshal cache value", zap.String("product_id", p.ID), zap.Error(err))
		c.drop(ctx, p.ID)
		return
	}
	c.written(ctx, p.ID, b, TTLProductCache)
}
