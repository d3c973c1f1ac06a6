package redisx

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(Config{Addr: mr.Addr()}, log.New(io.Discard, "", 0))
	t.Cleanup(c.Close)
	return c, mr
}

func TestSetWithMillisecondTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "blacklist:abc", []byte("1"), 1500*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := mr.TTL("blacklist:abc"); got != 1500*time.Millisecond {
		t.Fatalf("ttl=%s, want 1.5s", got)
	}
	v, err := mr.Get("blacklist:abc")
	if err != nil || v != "1" {
		t.Fatalf("value=%q err=%v", v, err)
	}
}

func TestExistsFollowsExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err := c.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("exists=%v err=%v", ok, err)
	}

	mr.FastForward(time.Minute)

	ok, err = c.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("key must be gone after ttl, exists=%v err=%v", ok, err)
	}
}

func TestExistsReportsUnavailableStore(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Exists(ctx, "k"); err == nil {
		t.Fatal("expected error from closed redis")
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected ping error from closed redis")
	}
}
