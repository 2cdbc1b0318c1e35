// pkg/middleware/scope.go
package middleware

import (
	"context"
	"net/http"

	"smtpapl/pkg/problems"
)

// Admin scopes.
const (
	ScopeRead  = "apl:read"
	ScopeWrite = "apl:write"
)

type scopeCtxKey string

const ctxScopesKey scopeCtxKey = "scopes"

// WithScopes stores scopes slice in context.
func WithScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, ctxScopesKey, scopes)
}

// ScopesFrom extracts scopes slice from context.
func ScopesFrom(ctx context.Context) []string {
	if s, ok := ctx.Value(ctxScopesKey).([]string); ok {
		return s
	}
	return nil
}

// RequireScope rejects requests whose authenticated scopes (set by AdminAuth)
// do not include scope.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasAnyScope(r.Context(), []string{scope}) {
				problems.Write(w, r, http.StatusForbidden, problems.Forbidden, "insufficient_scope: "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasAnyScope returns true if context holds at least one of the required scopes.
func HasAnyScope(ctx context.Context, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := map[string]struct{}{}
	for _, s := range ScopesFrom(ctx) {
		set[s] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
