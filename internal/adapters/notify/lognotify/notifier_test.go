package lognotify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/notify"
)

func TestNotifier_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	n := New(logger.New(logger.Options{Level: logger.Info, Format: logger.FormatJSON, Out: &buf}))

	exp := time.Date(2025, 12, 23, 10, 0, 0, 0, time.UTC)
	n.Notify(context.Background(), notify.Event{
		Type:        notify.EventRequestApproved,
		RequestID:   "r1",
		DoctorID:    "D1",
		DoctorName:  "Dr. Michael Chen",
		PatientID:   "P-MS-004",
		PatientName: "Sarah Johnson",
		Status:      "approved",
		ExpiryDate:  &exp,
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["event"] != "access_request.approved" || line["request_id"] != "r1" || line["component"] != "notify" {
		t.Fatalf("unexpected fields: %#v", line)
	}
	if _, ok := line["expiry_date"]; !ok {
		t.Fatalf("expected expiry_date field")
	}
}
