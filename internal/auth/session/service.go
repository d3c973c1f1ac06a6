package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/community/internal/domain"
)

type Users interface {
	CreateUser(ctx context.Context, username, passHash string) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
}

// Service выдаёт токены при логине и отзывает их при логауте.
// Сессии на сервере не хранятся: есть только blacklist отозванных jti.
type Service struct {
	log     *log.Logger
	users   Users
	hasher  domain.PasswordHasher
	tokens  domain.TokenManager
	revoked domain.TokenBlacklist
	ttl     time.Duration
	now     func() time.Time

	// хэш-пустышка: сверяем с ним, если пользователя нет, чтобы время ответа не выдавало логины
	dummyHash string
}

type Option func(*Service)

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(logger *log.Logger, users Users, hasher domain.PasswordHasher, tokens domain.TokenManager, revoked domain.TokenBlacklist, ttl time.Duration, opts ...Option) (*Service, error) {
	s := &Service{
		log:     logger,
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	h, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	s.dummyHash = h
	return s, nil
}

func (s *Service) Register(ctx context.Context, username, password string) (domain.User, error) {
	if !domain.ValidUsername(username) || !domain.ValidPassword(password) {
		return domain.User{}, domain.ErrBadParams
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return domain.User{}, err
	}
	s.log.Printf("registered user_id=%s username=%s", u.ID, u.Username)
	return u, nil
}

// Login возвращает ErrAuthenticationFailed и для неизвестного логина, и для неверного пароля.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Token, domain.TokenClaims, error) {
	u, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return "", domain.TokenClaims{}, domain.ErrAuthenticationFailed
	}
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, u.PassHash)
	if err != nil || !ok {
		if err != nil {
			s.log.Printf("verify password user_id=%s: %v", u.ID, err)
		}
		return "", domain.TokenClaims{}, domain.ErrAuthenticationFailed
	}

	tok, claims, err := s.tokens.Issue(u.Username, u.ID, uuid.NewString(), s.now(), s.ttl)
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Printf("login user_id=%s jti=%s exp=%s", u.ID, claims.JTI, claims.ExpiresAt.Format(time.RFC3339))
	return tok, claims, nil
}

// Logout отзывает токен до его естественного истечения.
// TTL записи = exp - now; уже истёкшему токену запись не нужна.
func (s *Service) Logout(ctx context.Context, id domain.Identity, raw domain.Token) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	if claims.Subject != id.Username {
		return fmt.Errorf("%w: token subject does not match identity", domain.ErrTokenInvalid)
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		s.log.Printf("logout jti=%s: already expired, nothing to revoke", claims.JTI)
		return nil
	}
	if err := s.revoked.MarkRevoked(ctx, claims.JTI, ttl); err != nil {
		return fmt.Errorf("revoke jti=%s: %w", claims.JTI, err)
	}
	s.log.Printf("logout jti=%s revoked ttl=%s", claims.JTI, ttl)
	return nil
}
