package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medisync-hub/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, patient_id,
			kind, title, content,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		rec.PatientID,
		string(rec.Kind),
		rec.Title,
		rec.Content,
		string(rec.Status),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return records.Record{}, records.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, patient_id, kind, title, content, status, created_at, updated_at
		FROM medical_records
		WHERE id = $1
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Record{}, records.ErrNotFound
	}
	return rec, err
}

func (r *RecordsRepo) ListByPatient(ctx context.Context, patientID string, filter records.ListFilter) ([]records.Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return []records.Record{}, nil
	}

	// query dinámica simple y segura (placeholders)
	var sb strings.Builder
	args := []any{patientID}
	sb.WriteString(`
		SELECT id, patient_id, kind, title, content, status, created_at, updated_at
		FROM medical_records
		WHERE patient_id = $1
	`)
	if !filter.IncludeVoided {
		sb.WriteString(` AND status = 'active'`)
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		args = append(args, kinds)
		sb.WriteString(fmt.Sprintf(` AND kind = ANY($%d)`, len(args)))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]records.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) Void(ctx context.Context, rec records.Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET status = 'voided', updated_at = $2
		WHERE id = $1
	`, rec.ID, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("void record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

func scanRecord(row rowScanner) (records.Record, error) {
	var rec records.Record
	var kind, status string
	if err := row.Scan(
		&rec.ID,
		&rec.PatientID,
		&kind,
		&rec.Title,
		&rec.Content,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return records.Record{}, err
	}
	rec.Kind = records.Kind(kind)
	rec.Status = records.Status(status)
	return rec, nil
}
