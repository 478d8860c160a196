package auth

import (
	"context"
	"strings"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDoctor:
		return RoleDoctor
	case RolePatient:
		return RolePatient
	default:
		return ""
	}
}

// Claims representa la información extraída del token.
// El servicio confía en que el colaborador de identidad ya autenticó al usuario.
type Claims struct {
	UserID string
	Name   string
	Role   Role
	Email  string
}

func (c Claims) IsDoctor() bool  { return c.Role == RoleDoctor }
func (c Claims) IsPatient() bool { return c.Role == RolePatient }

// AuthVerifier resuelve un bearer token a Claims.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
