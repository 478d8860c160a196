package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	Kind    Kind
	Title   string
	Content string
}

func (s *Service) Create(ctx context.Context, patientID string, in CreateInput) (Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Record{}, ErrInvalidInput
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Record{}, ErrInvalidInput
	}

	kind := Kind(strings.TrimSpace(string(in.Kind)))
	if kind == "" {
		kind = KindOther
	}
	if !validKind(kind) {
		return Record{}, ErrInvalidInput
	}

	now := s.now()
	rec := Record{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Kind:      kind,
		Title:     title,
		Content:   in.Content,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID, filter)
}

// Void marca el documento como voided (no se borra). Solo el paciente dueño.
// Idempotente.
func (s *Service) Void(ctx context.Context, id, patientID string) (Record, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.PatientID != strings.TrimSpace(patientID) {
		return Record{}, ErrForbidden
	}
	if rec.Status == StatusVoided {
		return rec, nil
	}

	rec.Status = StatusVoided
	rec.UpdatedAt = s.now()
	if err := s.repo.Void(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func validKind(k Kind) bool {
	switch k {
	case KindLabReport, KindPrescription, KindImaging, KindDischargeSummary, KindVaccination, KindOther:
		return true
	default:
		return false
	}
}

// ParseKinds interpreta un CSV de kinds (query param). Ignora vacíos.
func ParseKinds(raw string) ([]Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make([]Kind, 0)
	for _, p := range strings.Split(raw, ",") {
		k := Kind(strings.TrimSpace(p))
		if k == "" {
			continue
		}
		if !validKind(k) {
			return nil, ErrInvalidInput
		}
		out = append(out, k)
	}
	return out, nil
}
