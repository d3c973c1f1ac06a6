package domain

import "context"

// Ключ для хранения аутентифицированного пользователя в контексте HTTP-запроса
type ctxKey int

const identityCtxKey ctxKey = 1

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}
