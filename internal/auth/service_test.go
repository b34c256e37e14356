package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gigbite/backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewService(nil, "test-secret")

	token, err := s.issueToken("worker@example.com", models.RoleWorker)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	email, role, err := s.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if email != "worker@example.com" {
		t.Errorf("email: got %q", email)
	}
	if role != models.RoleWorker {
		t.Errorf("role: got %q", role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewService(nil, "secret-a")
	verifier := NewService(nil, "secret-b")

	token, err := issuer.issueToken("worker@example.com", models.RoleWorker)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	if _, _, err := verifier.ValidateToken(context.Background(), token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestValidateToken_Tampered(t *testing.T) {
	s := NewService(nil, "test-secret")

	token, err := s.issueToken("worker@example.com", models.RoleWorker)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, _, err := s.ValidateToken(context.Background(), tampered); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	s := NewService(nil, "test-secret")

	if _, _, err := s.ValidateToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	s := NewService(nil, "test-secret")

	// Admin is never self-assignable; the role check fires before any
	// repository access.
	for _, role := range []string{models.RoleAdmin, "overlord", ""} {
		if _, err := s.Register(context.Background(), "x@example.com", "pw", "X", role); err == nil {
			t.Errorf("role %q: expected error", role)
		}
	}
}
