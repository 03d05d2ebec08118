// Package cache holds the Redis read-through cache for the waste
// taxonomy. Reference data is immutable while lifecycles run, so a short
// TTL is safe and misses just fall through to MySQL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ecorewards/ecorewards-backend/internal/model"
)

const wasteTypesKey = "waste_types:active"

const ttl = 5 * time.Minute

var ErrMiss = errors.New("cache miss")

type TaxonomyCache struct {
	client *redis.Client
}

func New(addr, username, password string) (*TaxonomyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Username:    username,
		Password:    password,
		DB:          0,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &TaxonomyCache{client: client}, nil
}

func (c *TaxonomyCache) GetWasteTypes(ctx context.Context) ([]model.WasteType, error) {
	val, err := c.client.Get(ctx, wasteTypesKey).Result()
	if err == redis.Nil {
		return nil, ErrMiss
	} else if err != nil {
		return nil, err
	}
	var types []model.WasteType
	if err := json.Unmarshal([]byte(val), &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *TaxonomyCache) SetWasteTypes(ctx context.Context, types []model.WasteType) error {
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, wasteTypesKey, raw, ttl).Err()
}

func (c *TaxonomyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, wasteTypesKey).Err()
}
