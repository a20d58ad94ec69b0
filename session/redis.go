package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "realtydesk:session:"

// RedisStore keeps session state in redis, for deployments where the client
// runs headless and local disk is not durable.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func (r *RedisStore) Get(key string) (string, error) {
	v, err := r.client.Get(context.Background(), redisPrefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *RedisStore) Set(key, value string) error {
	return r.client.Set(context.Background(), redisPrefix+key, value, r.ttl).Err()
}

func (r *RedisStore) Clear() error {
	return r.client.Del(context.Background(), redisPrefix+KeyToken, redisPrefix+KeyUser).Err()
}
