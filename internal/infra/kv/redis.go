package kv

import (
	"context"
	"time"

	repo "bakery/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RedisStorage keeps carts as plain string values. A positive ttl lets
// abandoned carts expire.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// NewRedisStorage accepts a redis:// URL or a bare host:port.
func NewRedisStorage(addr string, ttl time.Duration, log *logrus.Entry) *RedisStorage {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}
	return NewRedisStorageFromClient(redis.NewClient(opts), ttl, log)
}

func NewRedisStorageFromClient(client *redis.Client, ttl time.Duration, log *logrus.Entry) *RedisStorage {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisStorage{
		client: client,
		ttl:    ttl,
		log:    log.WithField("component", "redis_storage"),
	}
}

// Initialize pings redis with exponential backoff until it answers.
func (r *RedisStorage) Initialize(ctx context.Context, attempts int) error {
	backoff := 500 * time.Millisecond
	for i := 1; i <= attempts; i++ {
		if r.Ping(ctx) {
			r.log.WithField("attempt", i).Info("redis ready")
			return nil
		}
		r.log.WithFields(logrus.Fields{"attempt": i, "backoff": backoff.String()}).Warn("redis not ready")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return errors.Errorf("redis not reachable after %d attempts", attempts)
}

func (r *RedisStorage) Ping(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(pctx).Err() == nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis GET %s", key)
	}
	return val, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "redis DEL %s", key)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
