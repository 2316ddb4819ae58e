// Package cache - кэш статистики каталога в Redis.
// Кэш необязателен: nil *StatsCache работает как пустой кэш.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/observability"

	"github.com/redis/go-redis/v9"
)

// StatisticsKey - ключ агрегированной статистики каталога
const StatisticsKey = "stats:directory"

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Connect создает клиента по URL (redis://...) или host:port и проверяет соединение
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// StatsCache хранит JSON-значения с TTL
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if client == nil {
		return nil
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get читает значение в dest. false - промах или ошибка (ошибки кэша не фатальны).
func (c *StatsCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.CacheRequests.WithLabelValues("miss").Inc()
		} else {
			observability.CacheRequests.WithLabelValues("error").Inc()
			logger.CtxWarn(ctx, "stats cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		observability.CacheRequests.WithLabelValues("error").Inc()
		logger.CtxWarn(ctx, "stats cache entry is corrupt", "key", key, "error", err)
		return false
	}
	observability.CacheRequests.WithLabelValues("hit").Inc()
	return true
}

// Set сохраняет значение; ошибки только логируются
func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.CtxWarn(ctx, "stats cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.CtxWarn(ctx, "stats cache write failed", "key", key, "error", err)
	}
}

// Invalidate удаляет ключи
func (c *StatsCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.CtxWarn(ctx, "stats cache invalidate failed", "keys", keys, "error", err)
	}
}
