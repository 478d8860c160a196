package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medisync-hub/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

const (
	DefaultCacheTTL  = time.Minute
	defaultCacheSize = 4096
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medisync_identity_cache_hits_total",
		Help: "Tokens resueltos desde la caché local de identidad.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medisync_identity_cache_misses_total",
		Help: "Tokens que requirieron llamar al servicio de identidad.",
	})
)

// Verifier implementa auth.AuthVerifier delegando en el servicio de identidad.
// Los claims verificados se cachean por hash del token durante ttl; los rechazos no.
type Verifier struct {
	client *Client
	cache  *expirable.LRU[string, auth.Claims]
}

func NewVerifier(client *Client, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Verifier{
		client: client,
		cache:  expirable.NewLRU[string, auth.Claims](defaultCacheSize, nil, ttl),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	key := tokenKey(token)
	if claims, ok := v.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return claims, nil
	}
	cacheMissesTotal.Inc()

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("identity verify failed: %w", err)
	}

	v.cache.Add(key, claims)
	return claims, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
