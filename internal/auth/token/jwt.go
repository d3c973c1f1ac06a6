package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/EgorLis/community/internal/domain"
)

var ErrEmptySecret = errors.New("token: empty signing secret")

type Manager struct {
	secret []byte
	issuer string
}

func New(secret string, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Manager{secret: []byte(secret), issuer: issuer}, nil
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.TokenManager
var _ domain.TokenManager = (*Manager)(nil)

// Issue подписывает токен HS256. Ошибка возможна только при неверной конфигурации ключа.
func (m *Manager) Issue(subject string, userID domain.UserID, jti string, issuedAt time.Time, ttl time.Duration) (domain.Token, domain.TokenClaims, error) {
	iat := jwt.NewNumericDate(issuedAt)
	exp := jwt.NewNumericDate(issuedAt.Add(ttl))

	cl := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			ExpiresAt: exp,
			IssuedAt:  iat,
			ID:        jti,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	tokenStr, err := t.SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.Token(tokenStr), toDomain(cl), nil
}

// Parse проверяет подпись и структуру. Срок жизни здесь не проверяется:
// просроченный токен разбирается успешно, решение принимает вызывающий (IsExpired).
func (m *Manager) Parse(raw domain.Token) (domain.TokenClaims, error) {
	var out jwtClaims
	_, err := jwt.ParseWithClaims(string(raw), &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if out.Subject == "" || out.ID == "" || out.ExpiresAt == nil || out.IssuedAt == nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing required claims", domain.ErrTokenInvalid)
	}
	if m.issuer != "" && out.Issuer != m.issuer {
		return domain.TokenClaims{}, fmt.Errorf("%w: unexpected issuer %q", domain.ErrTokenInvalid, out.Issuer)
	}

	return toDomain(out), nil
}

func (m *Manager) IsExpired(c domain.TokenClaims, now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func toDomain(cl jwtClaims) domain.TokenClaims {
	return domain.TokenClaims{
		Subject:   cl.Subject,
		JTI:       cl.ID,
		UserID:    cl.UserID,
		IssuedAt:  cl.IssuedAt.Time.UTC(),
		ExpiresAt: cl.ExpiresAt.Time.UTC(),
	}
}
