package mw

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/EgorLis/community/internal/domain"
	"github.com/EgorLis/community/internal/transport/web/logx"
)

// State — итог проверки запроса. Снаружи все отказы выглядят одинаково (401),
// различаются только в логах и тестах.
type State int

const (
	StatePublic State = iota
	StateTokenMissing
	StateSignatureInvalid
	StateExpired
	StateRevoked
	StateStoreUnavailable
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePublic:
		return "public_path"
	case StateTokenMissing:
		return "token_missing"
	case StateSignatureInvalid:
		return "signature_invalid"
	case StateExpired:
		return "expired"
	case StateRevoked:
		return "revoked"
	case StateStoreUnavailable:
		return "store_unavailable"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Passes: пропускать ли запрос дальше.
func (s State) Passes() bool {
	return s == StatePublic || s == StateAuthenticated
}

type Decision struct {
	State    State
	Identity domain.Identity
	// Err: причина отказа; при fail-open может быть задан и для StateAuthenticated.
	Err error
}

type GateConfig struct {
	PublicPaths []string
	// FailOpen: при ошибке Redis пропускать запрос. По умолчанию отказ (fail closed).
	FailOpen bool
}

// Gate — проверка bearer-токена на каждом непубличном запросе.
// Пользователь в БД не ищется: identity целиком берётся из claims.
type Gate struct {
	log       *log.Logger
	tokens    domain.TokenManager
	blacklist domain.TokenBlacklist
	public    *PathMatcher
	failOpen  bool
	now       func() time.Time
}

type GateOption func(*Gate)

func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(logger *log.Logger, tokens domain.TokenManager, blacklist domain.TokenBlacklist, cfg GateConfig, opts ...GateOption) *Gate {
	g := &Gate{
		log:       logger,
		tokens:    tokens,
		blacklist: blacklist,
		public:    NewPathMatcher(cfg.PublicPaths),
		failOpen:  cfg.FailOpen,
		now:       time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Decide проходит состояния строго по порядку: публичный путь → наличие токена →
// подпись → срок → blacklist. Истёкший токен не стоит похода в Redis.
func (g *Gate) Decide(r *http.Request) Decision {
	if g.public.Match(r.URL.Path) {
		return Decision{State: StatePublic}
	}

	raw := BearerToken(r)
	if raw == "" {
		return Decision{State: StateTokenMissing, Err: domain.ErrTokenMissing}
	}

	claims, err := g.tokens.Parse(raw)
	if err != nil {
		return Decision{State: StateSignatureInvalid, Err: err}
	}

	if g.tokens.IsExpired(claims, g.now()) {
		return Decision{State: StateExpired, Err: domain.ErrTokenExpired}
	}

	id := domain.Identity{
		UserID:    claims.UserID,
		Username:  claims.Subject,
		JTI:       claims.JTI,
		ExpiresAt: claims.ExpiresAt,
	}

	revoked, err := g.blacklist.IsRevoked(r.Context(), claims.JTI)
	if err != nil {
		if g.failOpen {
			return Decision{State: StateAuthenticated, Identity: id, Err: err}
		}
		return Decision{State: StateStoreUnavailable, Err: err}
	}
	if revoked {
		return Decision{State: StateRevoked, Err: domain.ErrTokenRevoked}
	}

	return Decision{State: StateAuthenticated, Identity: id}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "auth.gate"
		d := g.Decide(r)
		reqID := RequestIDFromCtx(r.Context())

		switch {
		case d.State == StatePublic:
			next.ServeHTTP(w, r)
		case d.State == StateAuthenticated:
			if d.Err != nil {
				logx.Warn(g.log, reqID, op, "revocation check skipped (fail-open)", d.Err, "jti", d.Identity.JTI)
			}
			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), d.Identity)))
		default:
			logx.Error(g.log, reqID, op, "rejected", d.Err, "state", d.State, "path", r.URL.Path)
			writeUnauthorized(w, d.State)
		}
	})
}

// IdentityFromCtx: сокращение для хендлеров.
func IdentityFromCtx(r *http.Request) (domain.Identity, bool) {
	return domain.IdentityFromCtx(r.Context())
}

func writeUnauthorized(w http.ResponseWriter, s State) {
	text := "invalid or missing token"
	switch s {
	case StateRevoked:
		text = "token is revoked"
	case StateExpired:
		text = "token is expired"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(domain.Fail(domain.ErrCodeUnauth, text))
}

// BearerToken читает токен только из заголовка Authorization: Bearer ...
// Токен в query/form не принимаем: он оседает в логах прокси.
func BearerToken(r *http.Request) domain.Token {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return domain.Token(strings.TrimSpace(h[7:]))
	}
	return ""
}
