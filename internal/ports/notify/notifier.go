package notify

import (
	"context"
	"time"
)

type EventType string

const (
	EventRequestCreated  EventType = "access_request.created"
	EventRequestApproved EventType = "access_request.approved"
	EventRequestDenied   EventType = "access_request.denied"
	EventRequestExpired  EventType = "access_request.expired"
)

// Event es el payload que recibe la contraparte (toast, email, webhook).
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	RequestID   string     `json:"request_id"`
	DoctorID    string     `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name"`
	PatientID   string     `json:"patient_id"`
	PatientName string     `json:"patient_name"`
	Status      string     `json:"status"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

// Notifier es fire-and-forget: no debe bloquear ni devolver error al llamador.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Nop descarta los eventos.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Multi reenvía cada evento a todos los notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}
