package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"medisync-hub/internal/domain/accessrequests"
)

// accessRequestRepo guarda en slice para conservar el orden de inserción;
// byID indexa la posición.
type accessRequestRepo struct {
	mu    sync.RWMutex
	items []accessrequests.AccessRequest
	byID  map[string]int
}

func NewAccessRequestsRepo() accessrequests.Repository {
	return &accessRequestRepo{
		byID: make(map[string]int),
	}
}

func (r *accessRequestRepo) Create(ctx context.Context, ar accessrequests.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ar.ID == "" {
		return errors.New("access request id required")
	}
	if _, exists := r.byID[ar.ID]; exists {
		return errors.New("access request already exists")
	}
	r.byID[ar.ID] = len(r.items)
	r.items = append(r.items, cloneRequest(ar))
	return nil
}

func (r *accessRequestRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	return cloneRequest(r.items[i]), nil
}

func (r *accessRequestRepo) Transition(ctx context.Context, ar accessrequests.AccessRequest, from accessrequests.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[ar.ID]
	if !ok {
		return accessrequests.ErrNotFound
	}
	if r.items[i].Status != from {
		return accessrequests.ErrStaleStatus
	}
	r.items[i] = cloneRequest(ar)
	return nil
}

func (r *accessRequestRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool {
		return ar.DoctorID == doctorID
	}), nil
}

func (r *accessRequestRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool {
		return ar.PatientID == patientID
	}), nil
}

func (r *accessRequestRepo) ListByPair(ctx context.Context, doctorID, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool {
		return ar.DoctorID == doctorID && ar.PatientID == patientID
	}), nil
}

func (r *accessRequestRepo) ExpireDue(ctx context.Context, now time.Time) ([]accessrequests.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]accessrequests.AccessRequest, 0)
	for i, ar := range r.items {
		if ar.Status != accessrequests.StatusApproved || ar.ExpiryDate == nil {
			continue
		}
		if ar.ExpiryDate.After(now) {
			continue
		}
		ar.Status = accessrequests.StatusExpired
		r.items[i] = ar
		out = append(out, cloneRequest(ar))
	}
	return out, nil
}

func (r *accessRequestRepo) list(keep func(accessrequests.AccessRequest) bool) []accessrequests.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accessrequests.AccessRequest, 0)
	for _, ar := range r.items {
		if keep(ar) {
			out = append(out, cloneRequest(ar))
		}
	}
	return out
}

// cloneRequest evita que el llamador mute el estado interno vía punteros/slices.
func cloneRequest(ar accessrequests.AccessRequest) accessrequests.AccessRequest {
	if ar.ApprovalDate != nil {
		t := *ar.ApprovalDate
		ar.ApprovalDate = &t
	}
	if ar.ExpiryDate != nil {
		t := *ar.ExpiryDate
		ar.ExpiryDate = &t
	}
	if ar.Documents != nil {
		ar.Documents = append([]string(nil), ar.Documents...)
	}
	return ar
}
