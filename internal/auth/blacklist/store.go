package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EgorLis/community/internal/domain"
)

// ErrNonPositiveTTL — отзывать уже истёкший токен не нужно; вызывающий должен
// пропустить вызов сам, а не полагаться на эту ошибку.
var ErrNonPositiveTTL = errors.New("blacklist: ttl must be positive")

// KV: минимальный интерфейс, который нам нужен от кеша.
type KV interface {
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Store struct {
	kv KV
}

var _ domain.TokenBlacklist = (*Store)(nil)

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) key(jti string) string { return domain.CacheKeyRevokedJTI(jti) }

// MarkRevoked пишет blacklist:<jti> с TTL, равным остатку жизни токена.
// Запись никогда не переживает токен: Redis удалит её сам.
func (s *Store) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNonPositiveTTL
	}
	if err := s.kv.Set(ctx, s.key(jti), []byte("1"), ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked возвращает ErrStoreUnavailable при недоступности Redis;
// fail-open/fail-closed решает вызывающий (mw.Gate).
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ok, err := s.kv.Exists(ctx, s.key(jti))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return ok, nil
}
