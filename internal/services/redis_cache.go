package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "translation:"

// RedisCache is a FrontCache shared between API replicas.
// Redis evicts keys on its own, so Purge has nothing to do.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr, which is either host:port or a redis:// URL.
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	var opt *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}
	opt.MaxRetries = 1
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second

	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &RedisCache{client: redis.NewClient(opt), ttl: ttl}, nil
}

// Ping checks connectivity
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, key string) (CachedTranslation, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			debugLog("Redis get failed", zap.Error(err))
		}
		return CachedTranslation{}, false
	}

	var value CachedTranslation
	if err := json.Unmarshal(data, &value); err != nil {
		return CachedTranslation{}, false
	}
	if !value.ExpiresAt.IsZero() && !time.Now().Before(value.ExpiresAt) {
		return CachedTranslation{}, false
	}
	return value, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value CachedTranslation) {
	ttl := r.ttl
	if !value.ExpiresAt.IsZero() {
		if remaining := time.Until(value.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		debugLog("Redis set failed", zap.Error(err))
	}
}

func (r *RedisCache) Purge(context.Context) int {
	return 0
}

// OpenFrontCache returns a RedisCache when redisAddr is set and reachable,
// otherwise an in-process MemoryCache. The returned close func is never nil.
func OpenFrontCache(ctx context.Context, redisAddr string, ttl time.Duration) (FrontCache, func() error) {
	if redisAddr == "" {
		return NewMemoryCache(ttl), func() error { return nil }
	}

	rc, err := NewRedisCache(redisAddr, ttl)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rc.Ping(pingCtx)
		cancel()
		if err == nil {
			infoLog("Using Redis front cache", zap.String("addr", rc.client.Options().Addr))
			return rc, rc.Close
		}
		_ = rc.Close()
	}

	warnLog("Redis unavailable, using in-memory front cache", zap.Error(err))
	return NewMemoryCache(ttl), func() error { return nil }
}
