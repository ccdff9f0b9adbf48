// Package cache инкапсулирует подключение к Redis.
// Здесь живёт именованная эксклюзивная аренда (lease), которой задача сверки
// гарантирует единственный работающий экземпляр.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
)

// Cache хранит клиент Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// AcquireLease пытается захватить именованную аренду на время ttl.
// Возвращает false, если аренду уже держит другой экземпляр.
func (c *Cache) AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.AcquireLease"
	ok, err := c.Db.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// ReleaseLease освобождает аренду досрочно. Истёкшая аренда
// освобождается самим Redis по ttl.
func (c *Cache) ReleaseLease(ctx context.Context, key string) error {
	const op = "cache.ReleaseLease"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
