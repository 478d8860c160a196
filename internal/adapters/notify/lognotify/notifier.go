package lognotify

import (
	"context"

	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/notify"
)

// Notifier escribe cada evento como una línea de log estructurada.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log.With(map[string]any{"component": "notify"})}
}

func (n *Notifier) Notify(_ context.Context, e notify.Event) {
	fields := map[string]any{
		"event":        string(e.Type),
		"request_id":   e.RequestID,
		"doctor_id":    e.DoctorID,
		"doctor_name":  e.DoctorName,
		"patient_id":   e.PatientID,
		"patient_name": e.PatientName,
		"status":       e.Status,
	}
	if e.ExpiryDate != nil {
		fields["expiry_date"] = e.ExpiryDate.UTC()
	}
	n.log.Info("access request notification", fields)
}
