package user

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		err  error
	}{
		{"", RoleUser, nil},
		{"user", RoleUser, nil},
		{"admin", RoleAdmin, nil},
		{" admin ", "", ErrInvalidRole},
		{" ", "", ErrInvalidRole},
		{"Admin", "", ErrInvalidRole},
		{"superuser", "", ErrInvalidRole},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if !errors.Is(err, tt.err) {
			t.Fatalf("ParseRole(%q) err = %v, want %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var in struct {
		Role Role `json:"role"`
	}

	if err := json.Unmarshal([]byte(`{"role":"admin"}`), &in); err != nil || in.Role != RoleAdmin {
		t.Fatalf("got %q, %v", in.Role, err)
	}

	if err := json.Unmarshal([]byte(`{"role":"root"}`), &in); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestUser_PublicHidesHash(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.co", Name: "Ada", Role: RoleAdmin, PasswordHash: "secret"}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if _, ok := m["PasswordHash"]; ok {
		t.Fatalf("hash leaked: %s", b)
	}

	if p := u.Public(false); p.Role != "" {
		t.Fatalf("role should be omitted, got %q", p.Role)
	}
	if p := u.Public(true); p.Role != RoleAdmin {
		t.Fatalf("role = %q", p.Role)
	}
}
