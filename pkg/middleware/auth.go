// pkg/middleware/auth.go
package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"smtpapl/pkg/problems"
)

type AdminAuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// StaticToken grants every admin scope. Meant for operators and CI.
	StaticToken string
}

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// AdminAuth authenticates admin callers by the static token or a JWT signed
// by a key from JWKSURL, then stores the granted scopes in the context.
func AdminAuth(cfg AdminAuthConfig, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	cache := &jwksCache{}
	jwksTTL := 6 * time.Hour
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				problems.Write(w, r, http.StatusUnauthorized, problems.Unauthorized, "missing bearer")
				return
			}
			raw := strings.TrimSpace(authz[len("Bearer "):])

			if cfg.StaticToken != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(cfg.StaticToken)) == 1 {
				ctx := WithScopes(r.Context(), []string{ScopeRead, ScopeWrite})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if cfg.JWKSURL == "" {
				problems.Write(w, r, http.StatusUnauthorized, problems.Unauthorized, "invalid token")
				return
			}

			set, err := cache.get(r.Context(), cfg.JWKSURL, jwksTTL)
			if err != nil {
				log.Errorw("admin auth: jwks fetch failed", "url", cfg.JWKSURL, "err", err)
				problems.Write(w, r, http.StatusInternalServerError, problems.Internal, "jwks fetch failed")
				return
			}
			parseOpts := []jwt.ParseOption{jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithAcceptableSkew(30 * time.Second)}
			if cfg.Issuer != "" {
				parseOpts = append(parseOpts, jwt.WithIssuer(strings.TrimRight(cfg.Issuer, "/")))
			}
			if cfg.Audience != "" {
				parseOpts = append(parseOpts, jwt.WithAudience(cfg.Audience))
			}
			jt, err := jwt.Parse([]byte(raw), parseOpts...)
			if err != nil {
				log.Debugw("admin auth: token rejected", "err", err)
				problems.Write(w, r, http.StatusUnauthorized, problems.Unauthorized, "invalid token")
				return
			}
			var scopes []string
			if sc, ok := jt.Get("scope"); ok {
				if s, _ := sc.(string); s != "" {
					scopes = strings.Fields(s)
				}
			}
			log.Debugw("admin auth", "sub", jt.Subject(), "scopes", scopes)
			next.ServeHTTP(w, r.WithContext(WithScopes(r.Context(), scopes)))
		})
	}
}
