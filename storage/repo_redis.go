package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "qaweb:storage:"

// RedisRepo keeps each namespace in a redis hash so that all entries of one
// browser expire together.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Repo = (*RedisRepo)(nil)

// NewRedisRepo wraps an existing client. A zero ttl never expires namespaces.
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

// DialRedis connects and pings redis
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[DialRedis] ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisRepo) SetItem(ctx context.Context, namespace, key, value string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}

	hashKey := redisKeyPrefix + namespace
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, hashKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("[RedisRepo SetItem] %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepo) GetItem(ctx context.Context, namespace, key string) (string, error) {
	if err := validate(namespace, key); err != nil {
		return "", err
	}

	value, err := r.client.HGet(ctx, redisKeyPrefix+namespace, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("[RedisRepo GetItem] %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("[RedisRepo GetItem] %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisRepo) RemoveItem(ctx context.Context, namespace, key string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}

	if err := r.client.HDel(ctx, redisKeyPrefix+namespace, key).Err(); err != nil {
		return fmt.Errorf("[RedisRepo RemoveItem] %s: %w", key, err)
	}
	return nil
}
