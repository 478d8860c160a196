package records

import "time"

type Kind string

const (
	KindLabReport        Kind = "lab_report"
	KindPrescription     Kind = "prescription"
	KindImaging          Kind = "imaging"
	KindDischargeSummary Kind = "discharge_summary"
	KindVaccination      Kind = "vaccination"
	KindOther            Kind = "other"
)

type Status string

const (
	StatusActive Status = "active"
	StatusVoided Status = "voided"
)

// Record es un documento médico del paciente. Los médicos lo leen
// solo con acceso vigente (ver accessrequests.Service.HasActiveAccess).
type Record struct {
	ID        string
	PatientID string

	Kind    Kind
	Title   string
	Content string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
