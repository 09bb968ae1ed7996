package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bitacora/internal/db"
	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secreto", time.Hour)
	account := &db.Account{ID: 7, Password: "hash"}

	token, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := issuer.Check(account, token); err != nil {
		t.Fatalf("check: %v", err)
	}

	account.IsActive = true
	if err := issuer.Check(account, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("activation should invalidate the token, got %v", err)
	}
}

func TestTokenIssuerRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer("secreto", time.Hour)
	account := &db.Account{ID: 3, Password: "hash"}

	token, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := issuer.Check(account, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}

	other := NewTokenIssuer("otro-secreto", time.Hour)
	if err := other.Check(account, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret accepted: %v", err)
	}
}

func TestTokenIssuerRejectsUnsignedTokens(t *testing.T) {
	issuer := NewTokenIssuer("secreto", time.Hour)
	account := &db.Account{ID: 1, Password: "hash"}

	claims := confirmationClaims{
		Fingerprint: fingerprint(account),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("build none token: %v", err)
	}
	if err := issuer.Check(account, unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none must be rejected, got %v", err)
	}
}

func TestAccountIDEncoding(t *testing.T) {
	encoded := EncodeAccountID(42)
	id, err := DecodeAccountID(encoded)
	if err != nil || id != 42 {
		t.Fatalf("round trip failed: id=%d err=%v", id, err)
	}
	if _, err := DecodeAccountID(encoded + "=="); err != nil {
		t.Fatalf("padded input should decode: %v", err)
	}
	for _, bad := range []string{"", "!!", EncodeAccountID(0)} {
		if _, err := DecodeAccountID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
