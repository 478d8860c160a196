package accessrequests

import (
	"context"
	"errors"
	"time"
)

// ErrStaleStatus lo devuelve Transition cuando el status guardado ya no es el esperado.
var ErrStaleStatus = errors.New("stale status")

// Repository conserva el orden de inserción en todos los listados.
type Repository interface {
	Create(ctx context.Context, r AccessRequest) error
	GetByID(ctx context.Context, id string) (AccessRequest, error)

	// Transition guarda r solo si el status actual es from (compare-and-set).
	Transition(ctx context.Context, r AccessRequest, from Status) error

	ListByDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error)
	ListByPatient(ctx context.Context, patientID string) ([]AccessRequest, error)
	ListByPair(ctx context.Context, doctorID, patientID string) ([]AccessRequest, error)

	// ExpireDue pasa a expired todo approved con ExpiryDate <= now y devuelve los afectados.
	ExpireDue(ctx context.Context, now time.Time) ([]AccessRequest, error)
}
