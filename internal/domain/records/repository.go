package records

import "context"

type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Record, error)
	Void(ctx context.Context, rec Record) error
}

type ListFilter struct {
	Kinds         []Kind
	IncludeVoided bool
}
