package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medisync-hub/internal/domain/accessrequests"
)

const accessRequestColumns = `
	id, doctor_id, doctor_name, patient_id, patient_name,
	request_date, status, approval_date, expiry_date,
	reason, documents`

// documents se lee como JSON para no depender del type map de pgx en database/sql.
const accessRequestSelect = `
	id, doctor_id, doctor_name, patient_id, patient_name,
	request_date, status, approval_date, expiry_date,
	reason, array_to_json(documents)`

type AccessRequestsRepo struct {
	db *sql.DB
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db}
}

func (r *AccessRequestsRepo) Create(ctx context.Context, ar accessrequests.AccessRequest) error {
	documents := ar.Documents
	if documents == nil {
		documents = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_requests (`+accessRequestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		ar.ID,
		ar.DoctorID,
		ar.DoctorName,
		ar.PatientID,
		ar.PatientName,
		ar.RequestDate,
		string(ar.Status),
		toNullTime(ar.ApprovalDate),
		toNullTime(ar.ExpiryDate),
		ar.Reason,
		documents,
	)
	if err != nil {
		return fmt.Errorf("insert access request: %w", err)
	}
	return nil
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestSelect+`
		FROM access_requests
		WHERE id = $1
	`, id)

	ar, err := scanAccessRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	return ar, err
}

// Transition es un compare-and-set sobre status: si otra escritura ganó,
// distingue entre fila inexistente y status distinto.
func (r *AccessRequestsRepo) Transition(ctx context.Context, ar accessrequests.AccessRequest, from accessrequests.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE access_requests
		SET
			status = $3,
			approval_date = $4,
			expiry_date = $5
		WHERE id = $1 AND status = $2
	`,
		ar.ID,
		string(from),
		string(ar.Status),
		toNullTime(ar.ApprovalDate),
		toNullTime(ar.ExpiryDate),
	)
	if err != nil {
		return fmt.Errorf("transition access request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, ar.ID); err != nil {
		return err
	}
	return accessrequests.ErrStaleStatus
}

func (r *AccessRequestsRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return []accessrequests.AccessRequest{}, nil
	}
	return r.list(ctx, `WHERE doctor_id = $1`, doctorID)
}

func (r *AccessRequestsRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return []accessrequests.AccessRequest{}, nil
	}
	return r.list(ctx, `WHERE patient_id = $1`, patientID)
}

func (r *AccessRequestsRepo) ListByPair(ctx context.Context, doctorID, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, `WHERE doctor_id = $1 AND patient_id = $2`, doctorID, patientID)
}

// ExpireDue cambia status en una sola sentencia; approval_date y expiry_date se conservan.
func (r *AccessRequestsRepo) ExpireDue(ctx context.Context, now time.Time) ([]accessrequests.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH due AS (
			UPDATE access_requests
			SET status = 'expired'
			WHERE status = 'approved' AND expiry_date <= $1
			RETURNING seq, `+accessRequestColumns+`
		)
		SELECT `+accessRequestSelect+`
		FROM due
		ORDER BY seq ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("expire access requests: %w", err)
	}
	return r.collect(rows)
}

func (r *AccessRequestsRepo) list(ctx context.Context, where string, args ...any) ([]accessrequests.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accessRequestSelect+`
		FROM access_requests
		`+where+`
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return r.collect(rows)
}

func (r *AccessRequestsRepo) collect(rows *sql.Rows) ([]accessrequests.AccessRequest, error) {
	defer rows.Close()

	out := make([]accessrequests.AccessRequest, 0)
	for rows.Next() {
		ar, err := scanAccessRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccessRequest(row rowScanner) (accessrequests.AccessRequest, error) {
	var ar accessrequests.AccessRequest
	var status string
	var approvalDate, expiryDate sql.NullTime
	var documents []byte

	if err := row.Scan(
		&ar.ID,
		&ar.DoctorID,
		&ar.DoctorName,
		&ar.PatientID,
		&ar.PatientName,
		&ar.RequestDate,
		&status,
		&approvalDate,
		&expiryDate,
		&ar.Reason,
		&documents,
	); err != nil {
		return accessrequests.AccessRequest{}, err
	}

	ar.Status = accessrequests.Status(status)
	ar.ApprovalDate = fromNullTime(approvalDate)
	ar.ExpiryDate = fromNullTime(expiryDate)
	ar.Documents = []string{}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &ar.Documents); err != nil {
			return accessrequests.AccessRequest{}, fmt.Errorf("decode documents: %w", err)
		}
	}
	return ar, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
