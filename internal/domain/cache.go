package domain

import (
	"context"
	"time"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyRevokedJTI(jti string) string { return "blacklist:" + jti }

// Простой k/v интерфейс. Реализация: Redis.
type Cache interface {
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(context.Context) error
	Close()
}
