package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceVersionKey = "balance:version"

// BalanceCache wraps Redis based caching of computed balances with a
// version counter. Writes anywhere in the ledger bump the version
// instead of hunting down individual keys.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBalanceCache instantiates the cache helper. A nil client degrades to
// pass-through computation.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

func (c *BalanceCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, balanceVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, balanceVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes the customer's balance cache key with the current version.
func (c *BalanceCache) Key(ctx context.Context, customerID string) (string, error) {
	if c == nil || c.client == nil {
		return "balance:" + customerID, nil
	}
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("balance:%d:%s", ver, customerID), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *BalanceCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("customers: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached balance by advancing the version.
func (c *BalanceCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, balanceVersionKey).Err()
}
