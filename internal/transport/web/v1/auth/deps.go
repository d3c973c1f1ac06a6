package auth

import (
	"context"

	"github.com/EgorLis/community/internal/domain"
)

// Sessions: то, что хендлерам нужно от session.Service.
type Sessions interface {
	Register(ctx context.Context, username, password string) (domain.User, error)
	Login(ctx context.Context, username, password string) (domain.Token, domain.TokenClaims, error)
	Logout(ctx context.Context, id domain.Identity, raw domain.Token) error
}
