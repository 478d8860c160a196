package accessrequests

import "time"

// AccessWindow es la vigencia de una aprobación. No es configurable.
const AccessWindow = 24 * time.Hour

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

// Terminal: denied y expired no admiten más transiciones.
func (s Status) Terminal() bool {
	return s == StatusDenied || s == StatusExpired
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusExpired:
		return true
	default:
		return false
	}
}

type Party struct {
	ID   string
	Name string
}

// AccessRequest es el pedido de un médico para ver documentos de un paciente.
type AccessRequest struct {
	ID string

	DoctorID   string
	DoctorName string

	PatientID   string
	PatientName string

	RequestDate time.Time
	Status      Status

	// ApprovalDate es la fecha de respuesta del paciente (approve o deny).
	ApprovalDate *time.Time
	// ExpiryDate solo existe si la solicitud fue aprobada alguna vez.
	ExpiryDate *time.Time

	Reason    string
	Documents []string
}

// LiveAt reporta si la aprobación sigue vigente en t.
// No confía en el status cacheado: un approved vencido sin sweep da false.
func (r AccessRequest) LiveAt(t time.Time) bool {
	if r.Status != StatusApproved || r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.After(t)
}
