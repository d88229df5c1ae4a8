package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache хранит сериализованные ответы чтений в Redis.
// Nil-приёмник допустим: все операции превращаются в промахи, сервис работает без кэша.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedis создаёт кэш поверх Redis по указанному адресу.
func NewRedis(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

// Get возвращает закэшированное значение по ключу.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil {
		return nil, ErrCacheMiss
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Set сохраняет значение с базовым TTL и случайным разбросом,
// чтобы ключи не истекали одновременно.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if r == nil {
		return nil
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, key, value, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete удаляет указанные ключи. Используется как сигнал инвалидации
// для читателей рейтинга, каталога и корзины.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if r == nil || len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (r *RedisCache) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
