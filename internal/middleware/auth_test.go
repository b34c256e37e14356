package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- stub TokenValidator ---

type stubValidator struct {
	email string
	role  string
	err   error
}

func (s stubValidator) ValidateToken(context.Context, string) (string, string, error) {
	return s.email, s.role, s.err
}

func okHandler(t *testing.T, wantEmail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromCtx(r.Context())
		if p == nil {
			t.Error("principal missing from context")
		} else if wantEmail != "" && p.Email != wantEmail {
			t.Errorf("principal email: got %q, want %q", p.Email, wantEmail)
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ---------------------------------------------------------------------------
// BearerAuth
// ---------------------------------------------------------------------------

func TestBearerAuth_ValidToken(t *testing.T) {
	v := stubValidator{email: "worker@example.com", role: "worker"}
	h := BearerAuth(v)(okHandler(t, "worker@example.com"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	h := BearerAuth(stubValidator{})(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_MalformedHeader(t *testing.T) {
	h := BearerAuth(stubValidator{})(okHandler(t, ""))

	for _, header := range []string{"sometoken", "Basic dXNlcjpwYXNz", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestBearerAuth_CaseInsensitiveScheme(t *testing.T) {
	v := stubValidator{email: "worker@example.com", role: "worker"}
	h := BearerAuth(v)(okHandler(t, "worker@example.com"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "bearer sometoken")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	v := stubValidator{err: errors.New("expired")}
	h := BearerAuth(v)(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// RequireRole
// ---------------------------------------------------------------------------

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name      string
		principal *Principal
		required  string
		wantCode  int
	}{
		{"matching role", &Principal{Email: "b@example.com", Role: "buyer"}, "buyer", http.StatusOK},
		{"wrong role", &Principal{Email: "w@example.com", Role: "worker"}, "buyer", http.StatusForbidden},
		{"admin is not implicit", &Principal{Email: "a@example.com", Role: "admin"}, "buyer", http.StatusForbidden},
		{"no principal", nil, "buyer", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := RequireRole(tc.required)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tc.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tc.principal))
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rec.Code)
			}
		})
	}
}
