package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxEmailKey contextKey = "email"

// TokenDecoder verifies a bearer token and returns its subject email.
type TokenDecoder interface {
	Decode(token string) (string, error)
}

// BearerAuth rejects requests without a valid Authorization: Bearer header
// and stores the token's subject email in the request context. Missing,
// malformed, badly signed and expired tokens all get the same 401 body.
func BearerAuth(tokens TokenDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				unauthorized(w)
				return
			}
			email, err := tokens.Decode(raw)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), ctxEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromCtx returns the authenticated email, or "" outside BearerAuth.
func EmailFromCtx(ctx context.Context) string {
	email, _ := ctx.Value(ctxEmailKey).(string)
	return email
}

// WithEmail returns a context carrying the given email, for tests and
// internal calls.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxEmailKey, email)
}

func extractBearer(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return ""
	}
	return strings.TrimSpace(authz[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"missing or invalid bearer token"}`))
}
