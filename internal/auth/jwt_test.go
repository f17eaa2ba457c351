package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/geocoder89/jobtrail/internal/domain/user"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := NewManager("super-secret", time.Hour)

	tok, err := m.Issue("user-123", user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q", claims.UserID)
	}
	if claims.Role != user.RoleAdmin {
		t.Fatalf("role mismatch: got %q", claims.Role)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	tok, err := m.Issue("u1", user.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = time.Now

	_, err = m.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewManager("right-secret", time.Hour).Issue("u2", user.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewManager("wrong-secret", time.Hour).Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", time.Hour)
	tok, err := m.Issue("u3", user.RoleUser)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}

	// swap in the payload of an admin token signed with a different key
	other, _ := NewManager("other", time.Hour).Issue("u3", user.RoleAdmin)
	parts[1] = strings.Split(other, ".")[1]

	cases := map[string]string{
		"swapped_payload": strings.Join(parts, "."),
		"garbage":         "not-a-token",
		"empty":           "",
	}

	for name, raw := range cases {
		if _, err := m.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID:    "u4",
		Role:      user.RoleUser,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := NewManager("secret", time.Hour).Verify(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestVerify_RequiresAccessType(t *testing.T) {
	t.Parallel()

	m := NewManager("secret", time.Hour)
	claims := Claims{
		UserID:    "u5",
		Role:      user.RoleUser,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
