package middleware

import (
	"context"
	"net/http"
	"strings"

	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Headers del modo dev (sin verifier).
const (
	HeaderDebugUserID   = "X-Debug-User-ID"
	HeaderDebugUserName = "X-Debug-User-Name"
	HeaderDebugUserRole = "X-Debug-User-Role"
)

// AuthContext resuelve la identidad del request y la deja en el context.
// Con verifier nil (modo dev) lee los headers X-Debug-*; si no, el bearer token.
// Nunca corta el request: sin claims, cada handler decide 401/403.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"component": "auth"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				claims auth.Claims
				ok     bool
			)

			if verifier == nil {
				claims, ok = debugClaims(r)
			} else if token := bearerToken(r.Header.Get("Authorization")); token != "" {
				var err error
				claims, err = verifier.Verify(r.Context(), token)
				if err != nil {
					log.Debug("token rejected", map[string]any{
						"path":  r.URL.Path,
						"error": err.Error(),
					})
				}
				ok = err == nil
			}

			if ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func debugClaims(r *http.Request) (auth.Claims, bool) {
	uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID))
	if uid == "" {
		return auth.Claims{}, false
	}
	name := strings.TrimSpace(r.Header.Get(HeaderDebugUserName))
	if name == "" {
		name = uid
	}
	return auth.Claims{
		UserID: uid,
		Name:   name,
		Role:   auth.ParseRole(r.Header.Get(HeaderDebugUserRole)),
	}, true
}

func bearerToken(authHeader string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
