package cache

import (
	"context"
	"fmt"
	"time"

	"cargomarket_backend/internal/logger"
)

// Cache - кэш запросов с ключами на сущность.
// Ошибки кэша не должны ломать основную операцию: вызывающий код их логирует.
type Cache interface {
	// GetJSON декодирует значение в dest; false если ключа нет
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Incr увеличивает счетчик окна; TTL ставится при первом инкременте
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

func StatsUserKey(userID string) string {
	return "stats:user:" + userID
}

func NewsExternalKey(category string) string {
	if category == "" {
		category = "all"
	}
	return "news:external:" + category
}

func PlatformStatsKey() string {
	return "stats:platform"
}

func RateKey(scope, id string) string {
	return fmt.Sprintf("rate:%s:%s", scope, id)
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// New поднимает Redis, если адрес задан и отвечает на PING,
// иначе возвращает кэш в памяти процесса
func New(ctx context.Context, cfg Config) Cache {
	if cfg.Addr == "" {
		logger.Info("Redis address not set, using in-memory cache")
		return NewMemoryCache()
	}

	rc := NewRedisCache(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("Failed to connect to Redis, falling back to in-memory cache", "addr", cfg.Addr, "error", err)
		_ = rc.Close()
		return NewMemoryCache()
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return rc
}
