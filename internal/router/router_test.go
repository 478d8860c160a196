package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"medisync-hub/internal/router"
)

const (
	doctorID    = "D1"
	doctorName  = "Dr. Michael Chen"
	patientID   = "P-MS-004"
	patientName = "Sarah Johnson"
)

type user struct {
	id   string
	name string
	role string
}

var (
	doctor      = user{id: doctorID, name: doctorName, role: "doctor"}
	otherDoctor = user{id: "D2", name: "Dr. Ana Ruiz", role: "doctor"}
	patient     = user{id: patientID, name: patientName, role: "patient"}
	anonymous   = user{}
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newServer(t *testing.T) (*httptest.Server, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)}
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, Now: clk.Now}))
	t.Cleanup(ts.Close)
	return ts, clk
}

func TestHTTP_EndToEnd_RequestApproveReadExpire(t *testing.T) {
	ts, clk := newServer(t)

	// 1) Paciente sube un documento
	recordID := createRecord(t, ts.URL, patient, map[string]any{
		"kind":    "lab_report",
		"title":   "Complete blood count",
		"content": "Hb 13.5 g/dL",
	})

	// 2) Sin solicitud, el médico no tiene acceso
	if active := checkAccess(t, ts.URL, doctor, patientID); active {
		t.Fatalf("expected no access before any request")
	}
	if st, _ := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/records", doctor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 reading records without access, got %d", st)
	}

	// 3) Médico crea la solicitud
	requestID := createRequest(t, ts.URL, doctor, map[string]any{
		"patient_id":   patientID,
		"patient_name": patientName,
		"reason":       "Follow-up on lab results",
		"documents":    []string{"lab-report", "lab-report", "imaging"},
	})

	// pendiente no concede acceso
	if active := checkAccess(t, ts.URL, doctor, patientID); active {
		t.Fatalf("pending request must not grant access")
	}

	// 4) El paciente ve la solicitud pendiente
	{
		st, body := doReq(t, ts.URL, "GET", "/me/access-requests?status=pending", patient, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d body=%s", st, body)
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0]["id"] != requestID || items[0]["doctor_name"] != doctorName {
			t.Fatalf("unexpected pending list: %s", body)
		}
		docs, _ := items[0]["documents"].([]any)
		if len(docs) != 2 {
			t.Fatalf("expected deduplicated documents, got %v", docs)
		}
	}

	// 5) Otro médico no puede aprobar; el médico tampoco
	if st, _ := doReq(t, ts.URL, "POST", "/access-requests/"+requestID+"/approve", doctor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 approve by doctor, got %d", st)
	}

	// 6) Paciente aprueba
	{
		st, body := doReq(t, ts.URL, "POST", "/access-requests/"+requestID+"/approve", patient, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, body)
		}
		var got struct {
			Status       string    `json:"status"`
			ApprovalDate time.Time `json:"approval_date"`
			ExpiryDate   time.Time `json:"expiry_date"`
		}
		_ = json.Unmarshal(body, &got)
		if got.Status != "approved" || got.ExpiryDate.Sub(got.ApprovalDate) != 24*time.Hour {
			t.Fatalf("unexpected approval: %s", body)
		}
	}

	// segunda respuesta => 409
	if st, _ := doReq(t, ts.URL, "POST", "/access-requests/"+requestID+"/deny", patient, nil); st != http.StatusConflict {
		t.Fatalf("expected 409 on non-pending, got %d", st)
	}

	// 7) Médico lee documentos; otro médico no
	if !checkAccess(t, ts.URL, doctor, patientID) {
		t.Fatalf("expected access after approval")
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/records/"+recordID, doctor, nil)
		if st != http.StatusOK || !strings.Contains(string(body), "Hb 13.5") {
			t.Fatalf("expected record content, got %d body=%s", st, body)
		}
	}
	if st, _ := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/records", otherDoctor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 for other doctor, got %d", st)
	}

	// 8) Pasadas 24h exactas el acceso vence aunque el sweep no haya corrido
	clk.Advance(24 * time.Hour)
	if checkAccess(t, ts.URL, doctor, patientID) {
		t.Fatalf("access must end exactly at expiry")
	}
	if st, _ := doReq(t, ts.URL, "GET", "/patients/"+patientID+"/records/"+recordID, doctor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 after expiry, got %d", st)
	}
}

func TestHTTP_DenyFlow(t *testing.T) {
	ts, _ := newServer(t)

	requestID := createRequest(t, ts.URL, doctor, map[string]any{
		"patient_id":   patientID,
		"patient_name": patientName,
		"documents":    []string{},
	})

	st, body := doReq(t, ts.URL, "POST", "/access-requests/"+requestID+"/deny", patient, nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"status":"denied"`) {
		t.Fatalf("expected 200 denied, got %d body=%s", st, body)
	}
	if strings.Contains(string(body), "expiry_date") {
		t.Fatalf("denied request must not carry expiry_date: %s", body)
	}
	if checkAccess(t, ts.URL, doctor, patientID) {
		t.Fatalf("denied request must not grant access")
	}

	// el médico ve su historial
	st, body = doReq(t, ts.URL, "GET", "/me/access-requests", doctor, nil)
	if st != http.StatusOK || !strings.Contains(string(body), requestID) {
		t.Fatalf("expected doctor history, got %d body=%s", st, body)
	}
}

func TestHTTP_AuthAndValidation(t *testing.T) {
	ts, _ := newServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		as     user
		body   any
		want   int
	}{
		{"anonymous create", "POST", "/access-requests", anonymous, map[string]any{"patient_id": patientID}, http.StatusUnauthorized},
		{"patient cannot create", "POST", "/access-requests", patient, map[string]any{"patient_id": patientID}, http.StatusForbidden},
		{"missing patient name", "POST", "/access-requests", doctor, map[string]any{"patient_id": patientID}, http.StatusBadRequest},
		{"unknown request", "POST", "/access-requests/nope/approve", patient, nil, http.StatusNotFound},
		{"get unknown request", "GET", "/access-requests/nope", patient, nil, http.StatusNotFound},
		{"patient cannot check access", "GET", "/patients/" + patientID + "/access", patient, nil, http.StatusForbidden},
		{"doctor cannot upload records", "POST", "/me/records", doctor, map[string]any{"title": "x"}, http.StatusForbidden},
		{"bad record kind", "POST", "/me/records", patient, map[string]any{"title": "x", "kind": "selfie"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.as, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, body)
			}
		})
	}
}

func TestHTTP_RequestVisibleOnlyToParties(t *testing.T) {
	ts, _ := newServer(t)

	requestID := createRequest(t, ts.URL, doctor, map[string]any{
		"patient_id":   patientID,
		"patient_name": patientName,
	})

	for _, u := range []user{doctor, patient} {
		if st, _ := doReq(t, ts.URL, "GET", "/access-requests/"+requestID, u, nil); st != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", u.id, st)
		}
	}
	if st, _ := doReq(t, ts.URL, "GET", "/access-requests/"+requestID, otherDoctor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 for unrelated doctor, got %d", st)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts, _ := newServer(t)

	if st, body := doReq(t, ts.URL, "GET", "/health", anonymous, nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, body)
	}

	// genera al menos una muestra
	_, _ = doReq(t, ts.URL, "GET", "/me/access-requests", patient, nil)

	st, body := doReq(t, ts.URL, "GET", "/metrics", anonymous, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "medisync_http_requests_total") {
		t.Fatalf("expected http metrics, got %d", st)
	}
}

func createRequest(t *testing.T, baseURL string, as user, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/access-requests", as, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create request, got %d body=%s", st, body)
	}
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &out)
	if out.ID == "" || out.Status != "pending" {
		t.Fatalf("unexpected created request: %s", body)
	}
	return out.ID
}

func createRecord(t *testing.T, baseURL string, as user, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/me/records", as, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create record, got %d body=%s", st, body)
	}
	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &out)
	if out.ID == "" {
		t.Fatalf("expected record id, body=%s", body)
	}
	return out.ID
}

func checkAccess(t *testing.T, baseURL string, as user, patient string) bool {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/patients/"+patient+"/access", as, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 access check, got %d body=%s", st, body)
	}
	var out struct {
		Active bool `json:"active"`
	}
	_ = json.Unmarshal(body, &out)
	return out.Active
}

func doReq(t *testing.T, baseURL, method, path string, as user, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.id != "" {
		req.Header.Set("X-Debug-User-ID", as.id)
		req.Header.Set("X-Debug-User-Name", as.name)
		req.Header.Set("X-Debug-User-Role", as.role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
