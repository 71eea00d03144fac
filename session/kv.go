package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisKV 字符串键值，满足 profile.KV
type RedisKV struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisKV ttl 为 0 表示不过期
func NewRedisKV(rdb *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{rdb: rdb, ttl: ttl}
}

func (k *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := k.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", key)
	}
	return v, true, nil
}

func (k *RedisKV) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(k.rdb.Set(ctx, key, value, k.ttl).Err(), "redis set %s", key)
}

func (k *RedisKV) Del(ctx context.Context, key string) error {
	return errors.Wrapf(k.rdb.Del(ctx, key).Err(), "redis del %s", key)
}
