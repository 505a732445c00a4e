package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/centralauth/centralauth/internal/core/domain"
)

var testUser = &domain.User{
	ID:       "user_1",
	Email:    "alice@example.com",
	FullName: "Alice Example",
	Roles:    []string{domain.RoleAdmin},
}

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := NewCodec("secret", 15*time.Minute)
	now := time.Now().UTC()

	signed, expiresAt, err := codec.Issue(testUser, now)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if want := now.Add(15 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("unexpected expiry: got %v, want %v", expiresAt, want)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user_1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasRole(domain.RoleAdmin) {
		t.Fatalf("expected admin role in claims")
	}
}

func TestCodec_Verify_Expired(t *testing.T) {
	codec := NewCodec("secret", time.Minute)

	signed, _, err := codec.Issue(testUser, time.Now().UTC().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	signed, _, err := NewCodec("secret-a", time.Minute).Issue(testUser, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := NewCodec("secret-b", time.Minute).Verify(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_Verify_RejectsUnsignedAlg(t *testing.T) {
	codec := NewCodec("secret", time.Minute)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user_1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := codec.Verify(unsigned); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestNewOpaque(t *testing.T) {
	value, hash, err := NewOpaque()
	if err != nil {
		t.Fatalf("NewOpaque failed: %v", err)
	}
	if value == "" || hash == "" {
		t.Fatalf("expected non-empty value and hash")
	}
	if strings.ContainsAny(value, "+/=") {
		t.Fatalf("value not URL-safe: %q", value)
	}
	if hash != HashOpaque(value) {
		t.Fatalf("hash mismatch")
	}
	if len(hash) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d", len(hash))
	}

	other, _, err := NewOpaque()
	if err != nil {
		t.Fatalf("NewOpaque failed: %v", err)
	}
	if other == value {
		t.Fatalf("two opaque tokens collided")
	}
}

func TestNewClientID(t *testing.T) {
	id, err := NewClientID()
	if err != nil {
		t.Fatalf("NewClientID failed: %v", err)
	}
	if !strings.HasPrefix(id, "client_") {
		t.Fatalf("missing prefix: %q", id)
	}
	if len(id) != len("client_")+16 {
		t.Fatalf("unexpected length: %q", id)
	}
}
