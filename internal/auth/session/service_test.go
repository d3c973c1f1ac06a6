package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/EgorLis/community/internal/auth/password"
	"github.com/EgorLis/community/internal/auth/token"
	"github.com/EgorLis/community/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	byKey map[string]domain.User
}

func (m *memUsers) CreateUser(_ context.Context, username, passHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byKey == nil {
		m.byKey = map[string]domain.User{}
	}
	if _, ok := m.byKey[username]; ok {
		return domain.User{}, domain.ErrConflict
	}
	u := domain.User{ID: uuid.New(), Username: username, PassHash: passHash}
	m.byKey[username] = u
	return u, nil
}

func (m *memUsers) UserByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byKey[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type revocation struct {
	jti string
	ttl time.Duration
}

type recordingBlacklist struct {
	marks   []revocation
	markErr error
}

func (r *recordingBlacklist) MarkRevoked(_ context.Context, jti string, ttl time.Duration) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.marks = append(r.marks, revocation{jti: jti, ttl: ttl})
	return nil
}

func (r *recordingBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	for _, m := range r.marks {
		if m.jti == jti {
			return true, nil
		}
	}
	return false, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc    *Service
	users  *memUsers
	bl     *recordingBlacklist
	tokens *token.Manager
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tm, err := token.New("secret", "community")
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		users:  &memUsers{},
		bl:     &recordingBlacklist{},
		tokens: tm,
		clock:  &clock{t: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)},
	}
	hasher := password.New(&argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	f.svc, err = New(log.New(io.Discard, "", 0), f.users, hasher, tm, f.bl, time.Hour, WithClock(f.clock.now))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) register(t *testing.T, username, pass string) domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), username, pass)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "abc", "password"); !errors.Is(err, domain.ErrBadParams) {
		t.Fatalf("short username: %v", err)
	}
	if _, err := f.svc.Register(ctx, "alice", "pw"); !errors.Is(err, domain.ErrBadParams) {
		t.Fatalf("short password: %v", err)
	}
	u := f.register(t, "alice", "password")
	if u.PassHash == "password" || u.PassHash == "" {
		t.Fatalf("password must be hashed, got %q", u.PassHash)
	}
	if _, err := f.svc.Register(ctx, "alice", "password"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate username: %v", err)
	}
}

func TestLoginIssuesTokenWithConfiguredTTL(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "password")

	raw, claims, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	parsed, err := f.tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if parsed.Subject != "alice" || parsed.UserID != u.ID || parsed.JTI != claims.JTI {
		t.Fatalf("unexpected claims %+v", parsed)
	}
	if _, err := uuid.Parse(parsed.JTI); err != nil {
		t.Fatalf("jti must be a uuid: %v", err)
	}
	if got := parsed.ExpiresAt.Sub(f.clock.now()); got != time.Hour {
		t.Fatalf("lifetime=%s", got)
	}
}

func TestLoginGivesFreshJTIEachTime(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")

	_, c1, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}
	_, c2, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}
	if c1.JTI == c2.JTI {
		t.Fatal("jti must be unique per login")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	ctx := context.Background()

	_, _, errUnknown := f.svc.Login(ctx, "nobody", "password")
	_, _, errWrong := f.svc.Login(ctx, "alice", "wrong-password")

	if !errors.Is(errUnknown, domain.ErrAuthenticationFailed) || !errors.Is(errWrong, domain.ErrAuthenticationFailed) {
		t.Fatalf("unknown=%v wrong=%v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("errors leak the cause: %q vs %q", errUnknown, errWrong)
	}
}

func TestLogoutRevokesForRemainingLifetime(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	raw, claims, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}
	id := domain.Identity{Username: "alice", JTI: claims.JTI}

	if err := f.svc.Logout(context.Background(), id, raw); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.bl.marks) != 1 {
		t.Fatalf("marks=%v", f.bl.marks)
	}
	m := f.bl.marks[0]
	if m.jti != claims.JTI {
		t.Fatalf("revoked jti=%s, want %s", m.jti, claims.JTI)
	}
	if m.ttl != 3600*time.Second {
		t.Fatalf("ttl=%s, want 1h", m.ttl)
	}
}

func TestLogoutLaterShrinksTTL(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	raw, claims, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}

	f.clock.advance(45 * time.Minute)
	if err := f.svc.Logout(context.Background(), domain.Identity{Username: "alice", JTI: claims.JTI}, raw); err != nil {
		t.Fatal(err)
	}
	if got := f.bl.marks[0].ttl; got != 15*time.Minute {
		t.Fatalf("ttl=%s, want 15m", got)
	}
}

func TestLogoutOfExpiredTokenWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	raw, claims, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}

	f.clock.advance(time.Hour)
	if err := f.svc.Logout(context.Background(), domain.Identity{Username: "alice", JTI: claims.JTI}, raw); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.bl.marks) != 0 {
		t.Fatalf("no revocation expected, got %v", f.bl.marks)
	}
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	f.register(t, "bobby", "password")
	raw, _, err := f.svc.Login(context.Background(), "bobby", "password")
	if err != nil {
		t.Fatal(err)
	}

	err = f.svc.Logout(context.Background(), domain.Identity{Username: "alice"}, raw)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if len(f.bl.marks) != 0 {
		t.Fatalf("nothing must be revoked, got %v", f.bl.marks)
	}
}

func TestLogoutStoreFailureIsNotSilent(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "password")
	raw, claims, err := f.svc.Login(context.Background(), "alice", "password")
	if err != nil {
		t.Fatal(err)
	}
	f.bl.markErr = fmt.Errorf("%w: dial tcp: connection refused", domain.ErrStoreUnavailable)

	err = f.svc.Logout(context.Background(), domain.Identity{Username: "alice", JTI: claims.JTI}, raw)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
	for _, authErr := range []error{domain.ErrTokenInvalid, domain.ErrTokenRevoked, domain.ErrAuthenticationFailed} {
		if errors.Is(err, authErr) {
			t.Fatalf("store failure must not read as %v", authErr)
		}
	}
	if revoked, _ := f.bl.IsRevoked(context.Background(), claims.JTI); revoked {
		t.Fatal("nothing must be recorded when the write failed")
	}
}

type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error)         { return "", errors.New("entropy source failed") }
func (brokenHasher) Verify(string, string) (bool, error) { return false, nil }

func TestNewFailsWithoutDummyHash(t *testing.T) {
	tm, _ := token.New("secret", "community")
	svc, err := New(log.New(io.Discard, "", 0), &memUsers{}, brokenHasher{}, tm, &recordingBlacklist{}, time.Hour)
	if err == nil || svc != nil {
		t.Fatalf("want construction error, got svc=%v err=%v", svc, err)
	}
}
