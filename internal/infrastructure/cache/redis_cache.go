// Package cache implementa ports.Cache sobre Redis.
//
// Invalidate no borra claves: incrementa un contador de generación que forma parte de cada clave,
// de modo que las entradas viejas quedan inaccesibles y expiran solas por TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/aromas-stock/internal/application/ports"
)

const defaultPrefix = "aromas"

var _ ports.Cache = (*RedisCache)(nil)

// RedisCache caché JSON con invalidación por generación.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache crea el cliente. No conecta: usar Ping para verificar.
func NewRedisCache(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client, prefix: defaultPrefix}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get busca key en la generación vigente y decodifica el JSON en dest.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}
	val, err := c.client.Get(ctx, entryKey(c.prefix, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("cache: decodificar %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, entryKey(c.prefix, gen, key), payload, ttl).Err()
}

// Invalidate pasa a una nueva generación.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey(c.prefix)).Err()
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(c.prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func generationKey(prefix string) string { return prefix + ":gen" }

func entryKey(prefix string, gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", prefix, gen, key)
}
