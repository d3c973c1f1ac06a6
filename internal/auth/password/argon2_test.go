package password

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// облегчённые параметры, чтобы тесты не тормозили
var fastParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := New(fastParams)
	enc, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := h.Verify("s3cret", enc)
	if err != nil || !ok {
		t.Fatalf("verify ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong", enc)
	if err != nil || ok {
		t.Fatalf("wrong password ok=%v err=%v", ok, err)
	}
}

func TestVerifyLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := New(fastParams)

	ok, err := h.Verify("password-1", string(legacy))
	if err != nil || !ok {
		t.Fatalf("bcrypt verify ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("password-2", string(legacy))
	if err != nil || ok {
		t.Fatalf("bcrypt mismatch ok=%v err=%v", ok, err)
	}
}

func TestHashWithoutParams(t *testing.T) {
	var h *Hasher
	if _, err := h.Hash("x"); err == nil {
		t.Fatal("expected error for nil hasher")
	}
}
