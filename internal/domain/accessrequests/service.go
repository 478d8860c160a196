package accessrequests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"medisync-hub/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("access request not found")
	ErrInvalidState = errors.New("access request is not pending")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo     Repository
	notifier notify.Notifier
	now      func() time.Time

	// mu serializa create/approve/deny/sweep.
	mu       sync.Mutex
	sweeping atomic.Bool
}

func NewService(repo Repository, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj del servicio; nil mantiene time.Now.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	Doctor    Party
	Patient   Party
	Reason    string
	Documents []string
}

func (s *Service) CreateRequest(ctx context.Context, in CreateInput) (AccessRequest, error) {
	doctor := trimParty(in.Doctor)
	patient := trimParty(in.Patient)

	if doctor.ID == "" || doctor.Name == "" || patient.ID == "" || patient.Name == "" {
		return AccessRequest{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := AccessRequest{
		ID:          uuid.NewString(),
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		PatientID:   patient.ID,
		PatientName: patient.Name,
		RequestDate: s.now(),
		Status:      StatusPending,
		Reason:      strings.TrimSpace(in.Reason),
		Documents:   normalizeDocuments(in.Documents),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return AccessRequest{}, err
	}

	s.publish(ctx, notify.EventRequestCreated, r)
	return r, nil
}

func (s *Service) ApproveRequest(ctx context.Context, id string) (AccessRequest, error) {
	return s.respond(ctx, id, StatusApproved)
}

func (s *Service) DenyRequest(ctx context.Context, id string) (AccessRequest, error) {
	return s.respond(ctx, id, StatusDenied)
}

func (s *Service) respond(ctx context.Context, id string, to Status) (AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AccessRequest{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(ctx, id)
	if err != nil {
		return AccessRequest{}, err
	}
	if r.Status != StatusPending {
		return AccessRequest{}, ErrInvalidState
	}

	now := s.now()
	r.Status = to
	r.ApprovalDate = &now
	if to == StatusApproved {
		exp := now.Add(AccessWindow)
		r.ExpiryDate = &exp
	}

	if err := s.repo.Transition(ctx, r, StatusPending); err != nil {
		if errors.Is(err, ErrStaleStatus) {
			return AccessRequest{}, ErrInvalidState
		}
		return AccessRequest{}, err
	}

	evt := notify.EventRequestApproved
	if to == StatusDenied {
		evt = notify.EventRequestDenied
	}
	s.publish(ctx, evt, r)
	return r, nil
}

func (s *Service) GetRequest(ctx context.Context, id string) (AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AccessRequest{}, ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, ErrValidation
	}
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]AccessRequest, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrValidation
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// HasActiveAccess es el único gate de autorización para servir documentos.
// La vigencia se deriva de ExpiryDate > now, nunca del status solo.
func (s *Service) HasActiveAccess(ctx context.Context, doctorID, patientID string) (bool, error) {
	doctorID = strings.TrimSpace(doctorID)
	patientID = strings.TrimSpace(patientID)
	if doctorID == "" || patientID == "" {
		return false, ErrValidation
	}

	items, err := s.repo.ListByPair(ctx, doctorID, patientID)
	if err != nil {
		return false, err
	}

	now := s.now()
	for _, r := range items {
		if r.LiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// SweepExpired marca como expired los approved vencidos.
// Si ya hay un sweep en curso devuelve skipped=true sin hacer nada.
func (s *Service) SweepExpired(ctx context.Context) (expired []AccessRequest, skipped bool, err error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, true, nil
	}
	defer s.sweeping.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired, err = s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return nil, false, err
	}

	for _, r := range expired {
		s.publish(ctx, notify.EventRequestExpired, r)
	}
	return expired, false, nil
}

func (s *Service) get(ctx context.Context, id string) (AccessRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AccessRequest{}, ErrNotFound
		}
		return AccessRequest{}, err
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, t notify.EventType, r AccessRequest) {
	s.notifier.Notify(context.WithoutCancel(ctx), notify.Event{
		Type:        t,
		At:          s.now(),
		RequestID:   r.ID,
		DoctorID:    r.DoctorID,
		DoctorName:  r.DoctorName,
		PatientID:   r.PatientID,
		PatientName: r.PatientName,
		Status:      string(r.Status),
		ExpiryDate:  r.ExpiryDate,
	})
}

func trimParty(p Party) Party {
	return Party{
		ID:   strings.TrimSpace(p.ID),
		Name: strings.TrimSpace(p.Name),
	}
}

// normalizeDocuments: trim, descarta vacíos y duplicados conservando el orden.
// Una lista vacía es válida.
func normalizeDocuments(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))

	for _, raw := range in {
		d := strings.TrimSpace(raw)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
