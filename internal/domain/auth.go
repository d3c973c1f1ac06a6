package domain

import (
	"context"
	"time"
)

// Token — подписанная строка сессии, для клиента непрозрачна.
type Token string

type TokenClaims struct {
	Subject   string // username
	JTI       string // уникальный id токена, ключ для ревокации
	UserID    UserID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Хеширование паролей
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// TokenManager выпускает и разбирает токены. Parse проверяет только подпись
// и структуру: срок жизни сверяется отдельно через IsExpired.
type TokenManager interface {
	Issue(subject string, userID UserID, jti string, issuedAt time.Time, ttl time.Duration) (Token, TokenClaims, error)
	Parse(raw Token) (TokenClaims, error)
	IsExpired(c TokenClaims, now time.Time) bool
}

// TokenBlacklist — отозванные jti с автоматическим истечением (Redis).
type TokenBlacklist interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Identity — аутентифицированный пользователь запроса.
type Identity struct {
	UserID    UserID
	Username  string
	JTI       string
	ExpiresAt time.Time
}
