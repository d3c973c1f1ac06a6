package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в v1.MapDomainError)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrConflict         = errors.New("conflict")           // 409
	ErrUnexpected       = errors.New("unexpected")         // 500
	ErrLockTimeout      = errors.New("lock_timeout")       // 503, можно повторить запрос
)

// Ошибки аутентификации. Наружу все они отдаются как 401,
// различаются только в логах и тестах.
var (
	ErrAuthenticationFailed = errors.New("authentication_failed")
	ErrTokenMissing         = errors.New("token_missing")
	ErrTokenInvalid         = errors.New("token_invalid")
	ErrTokenExpired         = errors.New("token_expired")
	ErrTokenRevoked         = errors.New("token_revoked")
	ErrStoreUnavailable     = errors.New("revocation_store_unavailable")
)

// Коды для error.code в конверте ответа
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeConflict         = 1009
	ErrCodeUnexpected       = 1500
	ErrCodeLockTimeout      = 1503
	ErrCodeStoreUnavailable = 1504
)
