package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

// CarCache é um cache read-through de carros do catálogo em Redis.
// Reservas nunca passam pelo cache; apenas a leitura do catálogo.
type CarCache struct {
	client *redis.Client
	group  singleflight.Group
	ttl    time.Duration
}

// NewCarCache cria uma nova instância de CarCache
func NewCarCache(client *redis.Client, ttl time.Duration) *CarCache {
	return &CarCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(carUID string) string {
	return "car:" + carUID
}

// GetCar devolve o carro do cache ou, em caso de miss, carrega via loader.
// O singleflight colapsa lookups concorrentes do mesmo carro em uma única
// chamada ao banco.
func (c *CarCache) GetCar(ctx context.Context, carUID string, loader func(ctx context.Context) (*Car, error)) (*Car, error) {
	value, err := c.client.Get(ctx, cacheKey(carUID)).Result()
	if err == nil {
		var car Car
		if err := json.Unmarshal([]byte(value), &car); err == nil {
			return &car, nil
		}
		// cached payload corrupted, fall through to the loader
	}

	result, err, _ := c.group.Do(carUID, func() (interface{}, error) {
		car, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(car)
		if err == nil {
			// best effort: a cache miss on the next lookup is acceptable
			c.client.Set(ctx, cacheKey(carUID), payload, c.ttl)
		}
		return car, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Car), nil
}

// Invalidate remove o carro do cache
func (c *CarCache) Invalidate(ctx context.Context, carUID string) {
	c.client.Del(ctx, cacheKey(carUID))
}
