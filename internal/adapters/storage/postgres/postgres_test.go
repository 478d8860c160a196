package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"medisync-hub/internal/domain/accessrequests"
	"medisync-hub/internal/domain/records"
)

// setupTestDB levanta Postgres en Docker y aplica las migraciones.
// Solo corre con TEST_INTEGRATION definida.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("medisync_test"),
		tcpostgres.WithUsername("medisync"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	version, err := Migrate(dsn)
	if err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}
	// segunda corrida: ErrNoChange no es error
	if _, err := Migrate(dsn); err != nil {
		t.Fatalf("second Migrate error: %v", err)
	}

	db, err := Open(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@h:5432/db?sslmode=disable":   "pgx5://u:p@h:5432/db?sslmode=disable",
		"postgresql://u:p@h:5432/db?sslmode=disable": "pgx5://u:p@h:5432/db?sslmode=disable",
		"pgx5://u:p@h/db":                            "pgx5://u:p@h/db",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAccessRequestsRepo_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccessRequestsRepo(db)
	ctx := context.Background()

	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	mk := func(id, doctorID, patientID string) accessrequests.AccessRequest {
		return accessrequests.AccessRequest{
			ID:          id,
			DoctorID:    doctorID,
			DoctorName:  "Dr. Michael Chen",
			PatientID:   patientID,
			PatientName: "Sarah Johnson",
			RequestDate: base,
			Status:      accessrequests.StatusPending,
			Reason:      "follow-up",
			Documents:   []string{"lab-report", "imaging"},
		}
	}

	for _, ar := range []accessrequests.AccessRequest{
		mk("r-2", "D1", "P-MS-004"),
		mk("r-1", "D1", "P-MS-005"),
		mk("r-3", "D2", "P-MS-004"),
	} {
		if err := repo.Create(ctx, ar); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, "r-2")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Status != accessrequests.StatusPending || got.ApprovalDate != nil || got.ExpiryDate != nil {
		t.Fatalf("unexpected pending row: %#v", got)
	}
	if len(got.Documents) != 2 || got.Documents[1] != "imaging" {
		t.Fatalf("documents not round-tripped: %#v", got.Documents)
	}

	doctorList, _ := repo.ListByDoctor(ctx, "D1")
	if len(doctorList) != 2 || doctorList[0].ID != "r-2" || doctorList[1].ID != "r-1" {
		t.Fatalf("expected insertion order, got %#v", doctorList)
	}

	approvedAt := base.Add(time.Hour)
	expiresAt := approvedAt.Add(accessrequests.AccessWindow)
	got.Status = accessrequests.StatusApproved
	got.ApprovalDate = &approvedAt
	got.ExpiryDate = &expiresAt
	if err := repo.Transition(ctx, got, accessrequests.StatusPending); err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if err := repo.Transition(ctx, got, accessrequests.StatusPending); !errors.Is(err, accessrequests.ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}
	if err := repo.Transition(ctx, mk("nope", "D", "P"), accessrequests.StatusPending); !errors.Is(err, accessrequests.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	expired, err := repo.ExpireDue(ctx, expiresAt.Add(-time.Second))
	if err != nil || len(expired) != 0 {
		t.Fatalf("nothing due yet: %v %#v", err, expired)
	}
	expired, err = repo.ExpireDue(ctx, expiresAt)
	if err != nil {
		t.Fatalf("ExpireDue error: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != "r-2" || expired[0].Status != accessrequests.StatusExpired {
		t.Fatalf("unexpected expired set: %#v", expired)
	}
	if expired[0].ExpiryDate == nil || !expired[0].ExpiryDate.Equal(expiresAt) {
		t.Fatalf("expiry date must be kept, got %v", expired[0].ExpiryDate)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, accessrequests.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccessRequestsRepo_RejectsInconsistentRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccessRequestsRepo(db)
	ctx := context.Background()

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	wrongExpiry := now.Add(time.Hour)
	err := repo.Create(ctx, accessrequests.AccessRequest{
		ID:           "bad",
		DoctorID:     "D1",
		DoctorName:   "Dr",
		PatientID:    "P1",
		PatientName:  "P",
		RequestDate:  now,
		Status:       accessrequests.StatusApproved,
		ApprovalDate: &now,
		ExpiryDate:   &wrongExpiry,
	})
	if err == nil {
		t.Fatalf("expected check constraint violation")
	}
}

func TestRecordsRepo_FilterAndVoid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordsRepo(db)
	ctx := context.Background()

	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	for i, rec := range []records.Record{
		{ID: "rec-1", PatientID: "P1", Kind: records.KindLabReport, Title: "CBC", Content: "ok"},
		{ID: "rec-2", PatientID: "P1", Kind: records.KindImaging, Title: "X-ray"},
		{ID: "rec-3", PatientID: "P2", Kind: records.KindLabReport, Title: "Lipids"},
	} {
		rec.Status = records.StatusActive
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		rec.UpdatedAt = rec.CreatedAt
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	items, err := repo.ListByPatient(ctx, "P1", records.ListFilter{})
	if err != nil {
		t.Fatalf("ListByPatient error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "rec-2" {
		t.Fatalf("expected newest first, got %#v", items)
	}

	items, _ = repo.ListByPatient(ctx, "P1", records.ListFilter{Kinds: []records.Kind{records.KindLabReport}})
	if len(items) != 1 || items[0].ID != "rec-1" {
		t.Fatalf("kind filter failed: %#v", items)
	}

	if err := repo.Void(ctx, records.Record{ID: "rec-1", UpdatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("Void error: %v", err)
	}
	items, _ = repo.ListByPatient(ctx, "P1", records.ListFilter{})
	if len(items) != 1 {
		t.Fatalf("voided record should be hidden, got %d", len(items))
	}
	items, _ = repo.ListByPatient(ctx, "P1", records.ListFilter{IncludeVoided: true})
	if len(items) != 2 {
		t.Fatalf("include_voided should return 2, got %d", len(items))
	}

	if err := repo.Void(ctx, records.Record{ID: "missing"}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
