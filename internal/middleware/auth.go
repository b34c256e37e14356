package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxPrincipalKey contextKey = "principal"

// Principal is the authenticated identity decoded from the bearer token. The
// marketplace trusts Email as the acting user's identity.
type Principal struct {
	Email string
	Role  string
}

// TokenValidator decodes a bearer token into an identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (email, role string, err error)
}

// BearerAuth authenticates requests by validating the bearer token and puts
// the decoded principal into the request context.
func BearerAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			email, role, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid credential"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPrincipalKey, &Principal{Email: email, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates an operation on the principal's role. One check per
// operation, evaluated here and nowhere else.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromCtx(r.Context())
			if p == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			if p.Role != role {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromCtx returns the authenticated principal or nil.
func PrincipalFromCtx(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey).(*Principal)
	return p
}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
