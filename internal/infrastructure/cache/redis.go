package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"skill-ladder/internal/config"
	"skill-ladder/internal/pkg/logging"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultTTL = 10 * time.Minute

// Redis is a JSON cache that degrades to a no-op when the server cannot be
// reached, so callers never need to special-case a missing cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, logger logrus.FieldLogger) *Redis {
	logger = logging.OrDefault(logger)

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(strings.TrimSpace(cfg.Host), strings.TrimSpace(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("[Cache] Redis unavailable, bypassing cache")
		_ = client.Close()
		return &Redis{ttl: cfg.TTL, logger: logger}
	}

	return NewRedisWithClient(client, cfg.TTL, logger)
}

func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logging.OrDefault(logger)}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("[Cache] Redis command failed, treating as cache miss")
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{"key": k, "pattern": pattern}).Warn("[Cache] Redis delete error")
		}
	}
	return iter.Err()
}

// SetIfNotExists reports whether the key was claimed. Without a reachable
// server there is nobody to coordinate with, so the claim always succeeds.
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}
