package counter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/internal/model"
)

// RedisStore is the distributed counter backend. Every operation maps to
// a single atomic Redis command; errors surface as BackendError so the
// admission controller can fail open.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed counter store.
func NewRedis(addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		return nil, eris.New("counter: redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client}, nil
}

func backendErr(err error) error {
	return &model.BackendError{Backend: "counter", Err: err}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, backendErr(err)
	}
	return n, nil
}

func (s *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Decr(ctx, key).Result()
	if err != nil {
		return 0, backendErr(err)
	}
	return n, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, backendErr(err)
	}
	return n, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return backendErr(err)
	}
	return nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return backendErr(err)
	}
	return nil
}

func (s *RedisStore) Name() string { return "redis" }

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
