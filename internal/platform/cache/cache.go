package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"authbase/internal/platform/config"
)

// Store is the cache-aside contract. Entries are a disposable projection:
// a cache outage is a miss, never a request failure.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, key string)
}

// Key namespaces cache entries by operation so unrelated lookups cannot
// collide, e.g. "validate:3f1c..." vs "token:dev@example.com".
func Key(op, identity string) string {
	return op + ":" + identity
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
		return false
	}
	return true
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}

	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}
