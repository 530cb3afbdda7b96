package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedCatalog is a read-through Redis cache in front of another Catalog.
// The TTL bounds how stale a quoted price can be; cache faults degrade to a
// direct lookup rather than failing the checkout.
type CachedCatalog struct {
	inner  Catalog
	client *redis.Client
	ttl    time.Duration
}

func NewCachedCatalog(inner Catalog, client *redis.Client, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p Product
		if uerr := json.Unmarshal(data, &p); uerr == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p, err := c.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(p); merr == nil {
		// best effort; a failed Set only costs the next caller a lookup
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}

	return p, nil
}

func cacheKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
