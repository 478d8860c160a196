package jwtauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"medisync-hub/internal/ports/auth"
)

const testSecret = "test-secret-with-enough-bytes-0123456789"

func signHS256(t *testing.T, claims tokenClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims(sub, role string) tokenClaims {
	now := time.Now()
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "medisync-idp",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Name: "Dr. Michael Chen",
		Role: role,
	}
}

func TestHMAC_ValidToken(t *testing.T) {
	v, err := NewHMAC(testSecret, "medisync-idp")
	if err != nil {
		t.Fatalf("NewHMAC error: %v", err)
	}

	claims, err := v.Verify(context.Background(), signHS256(t, validClaims("D1", "Doctor")))
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "D1" || claims.Role != auth.RoleDoctor || claims.Name != "Dr. Michael Chen" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestHMAC_Rejections(t *testing.T) {
	v, _ := NewHMAC(testSecret, "medisync-idp")
	ctx := context.Background()

	expired := validClaims("D1", "doctor")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims("D1", "doctor")
	wrongIssuer.Issuer = "someone-else"

	noExp := validClaims("D1", "doctor")
	noExp.ExpiresAt = nil

	cases := map[string]struct {
		token string
		want  error
	}{
		"empty":        {token: "  ", want: ErrTokenEmpty},
		"expired":      {token: signHS256(t, expired), want: ErrInvalidToken},
		"wrong issuer": {token: signHS256(t, wrongIssuer), want: ErrInvalidToken},
		"no exp":       {token: signHS256(t, noExp), want: ErrInvalidToken},
		"no sub":       {token: signHS256(t, validClaims("", "doctor")), want: ErrInvalidToken},
		"unknown role": {token: signHS256(t, validClaims("D1", "nurse")), want: ErrMissingRole},
		"garbage":      {token: "not.a.jwt", want: ErrInvalidToken},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(ctx, tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestHMAC_RequiresSecret(t *testing.T) {
	if _, err := NewHMAC(" ", ""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestKeyfunc_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	jwks, _ := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": "test-key",
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	})
	kf, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		t.Fatalf("keyfunc: %v", err)
	}
	v := NewWithKeyfunc(kf, "")

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("P-MS-004", "patient"))
	tok.Header["kid"] = "test-key"
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "P-MS-004" || !claims.IsPatient() {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	// HS256 no se acepta en modo JWKS
	if _, err := v.Verify(context.Background(), signHS256(t, validClaims("P1", "patient"))); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS256 token, got %v", err)
	}
}
