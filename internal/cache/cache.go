package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshCache — минимальный контракт кэша refresh-слотов.
//
// Кэш зеркалирует последнее записанное значение слота refresh-токена
// аккаунта (модель «один слот на аккаунт», поэтому ключ — user id).
// Кэш опционален: сервис обязан корректно работать при nil-кэше,
// авторитетным источником остаётся БД.
type RefreshCache interface {
	// Get возвращает значение слота и признак его наличия в кэше.
	Get(ctx context.Context, userID uuid.UUID) (string, bool, error)
	// Set сохраняет значение слота с TTL (обычно TTL refresh-токена).
	Set(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	// Del удаляет слот (logout).
	Del(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "auth:slot:".
func NewRedisCache(redisURL, prefix string) (RefreshCache, error) {
	if prefix == "" {
		prefix = "auth:slot:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}

		return "", false, err
	}

	return v, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(userID), token, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
