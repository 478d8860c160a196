package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"medisync-hub/internal/domain/records"
)

type recordRepo struct {
	mu   sync.RWMutex
	byID map[string]records.Record
}

func NewRecordsRepo() records.Repository {
	return &recordRepo{
		byID: make(map[string]records.Record),
	}
}

func (r *recordRepo) Create(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.Record{}, records.ErrNotFound
	}
	return rec, nil
}

func (r *recordRepo) ListByPatient(ctx context.Context, patientID string, filter records.ListFilter) ([]records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Record, 0)

	for _, rec := range r.byID {
		if rec.PatientID != patientID {
			continue
		}
		if !filter.IncludeVoided && rec.Status == records.StatusVoided {
			continue
		}

		// Kind filter
		if len(filter.Kinds) > 0 {
			ok := false
			for _, k := range filter.Kinds {
				if rec.Kind == k {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		out = append(out, rec)
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *recordRepo) Void(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rec.ID]
	if !ok {
		return records.ErrNotFound
	}
	cur.Status = records.StatusVoided
	cur.UpdatedAt = rec.UpdatedAt
	r.byID[rec.ID] = cur
	return nil
}
