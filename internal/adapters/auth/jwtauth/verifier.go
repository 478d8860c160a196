package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"medisync-hub/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingRole  = errors.New("token missing role claim")
)

// DefaultLeeway tolera desfase de reloj entre emisor y servicio.
const DefaultLeeway = 30 * time.Second

// tokenClaims es el payload esperado: sub + name + role (+ email).
type tokenClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// Verifier implementa auth.AuthVerifier validando JWT localmente.
type Verifier struct {
	keyFn   func(ctx context.Context) jwt.Keyfunc
	methods []string
	issuer  string
	leeway  time.Duration
}

// NewHMAC valida tokens HS256 firmados con un secreto compartido.
func NewHMAC(secret, issuer string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	key := []byte(secret)
	return &Verifier{
		keyFn: func(context.Context) jwt.Keyfunc {
			return func(*jwt.Token) (any, error) { return key, nil }
		},
		methods: []string{jwt.SigningMethodHS256.Alg()},
		issuer:  strings.TrimSpace(issuer),
		leeway:  DefaultLeeway,
	}, nil
}

// NewJWKS descarga y refresca en segundo plano las llaves públicas del emisor.
// ctx controla la vida del refresco.
func NewJWKS(ctx context.Context, jwksURL, issuer string) (*Verifier, error) {
	jwksURL = strings.TrimSpace(jwksURL)
	if jwksURL == "" {
		return nil, errors.New("jwks url required")
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks keyfunc: %w", err)
	}
	return NewWithKeyfunc(k, issuer), nil
}

// NewWithKeyfunc permite inyectar un keyfunc ya construido (p.ej. JWKS estático en tests).
func NewWithKeyfunc(k keyfunc.Keyfunc, issuer string) *Verifier {
	return &Verifier{
		keyFn:   k.KeyfuncCtx,
		methods: []string{"RS256", "RS384", "RS512", "ES256", "ES384", "EdDSA"},
		issuer:  strings.TrimSpace(issuer),
		leeway:  DefaultLeeway,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	raw := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, raw, v.keyFn(ctx), opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	sub := strings.TrimSpace(raw.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	role := auth.ParseRole(raw.Role)
	if role == "" {
		return auth.Claims{}, ErrMissingRole
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = sub
	}

	return auth.Claims{
		UserID: sub,
		Name:   name,
		Role:   role,
		Email:  strings.TrimSpace(raw.Email),
	}, nil
}
