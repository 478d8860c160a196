package accessrequests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medisync-hub/internal/middleware"
	"medisync-hub/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Médico: crear solicitud
	r.Post("/access-requests", createRequestHandler(svc))

	r.Route("/access-requests/{requestID}", func(ar chi.Router) {
		ar.Get("/", getRequestHandler(svc))

		// Paciente: responder
		ar.Post("/approve", respondHandler(svc, svc.ApproveRequest))
		ar.Post("/deny", respondHandler(svc, svc.DenyRequest))
	})

	// Historial propio según rol (médico o paciente)
	r.Get("/me/access-requests", listMyRequestsHandler(svc))

	// Médico: ¿tengo acceso vigente a este paciente?
	r.Get("/patients/{patientID}/access", checkAccessHandler(svc))
}

type createRequestBody struct {
	PatientID   string   `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Reason      string   `json:"reason"`
	Documents   []string `json:"documents"`
}

type requestResponse struct {
	ID           string     `json:"id"`
	DoctorID     string     `json:"doctor_id"`
	DoctorName   string     `json:"doctor_name"`
	PatientID    string     `json:"patient_id"`
	PatientName  string     `json:"patient_name"`
	RequestDate  time.Time  `json:"request_date"`
	Status       Status     `json:"status"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Reason       string     `json:"reason"`
	Documents    []string   `json:"documents"`
}

type accessResponse struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Active    bool   `json:"active"`
}

// createRequestHandler godoc
// @Summary  Crear solicitud de acceso a documentos
// @Tags     access-requests
// @Accept   json
// @Produce  json
// @Param    body body createRequestBody true "paciente, motivo y documentos"
// @Success  201 {object} requestResponse
// @Failure  400,401,403 {string} string
// @Router   /access-requests [post]
func createRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsDoctor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ar, err := svc.CreateRequest(r.Context(), CreateInput{
			Doctor:    Party{ID: claims.UserID, Name: claims.Name},
			Patient:   Party{ID: req.PatientID, Name: req.PatientName},
			Reason:    req.Reason,
			Documents: req.Documents,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(ar))
	}
}

// getRequestHandler godoc
// @Summary  Ver una solicitud (médico o paciente involucrado)
// @Tags     access-requests
// @Produce  json
// @Param    requestID path string true "id de la solicitud"
// @Success  200 {object} requestResponse
// @Failure  401,403,404 {string} string
// @Router   /access-requests/{requestID} [get]
func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ar, err := svc.GetRequest(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if ar.DoctorID != claims.UserID && ar.PatientID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(ar))
	}
}

// respondHandler godoc
// @Summary  Aprobar o denegar una solicitud pendiente (paciente)
// @Tags     access-requests
// @Produce  json
// @Param    requestID path string true "id de la solicitud"
// @Success  200 {object} requestResponse
// @Failure  401,403,404,409 {string} string
// @Router   /access-requests/{requestID}/approve [post]
// @Router   /access-requests/{requestID}/deny [post]
func respondHandler(svc *Service, decide func(ctx context.Context, id string) (AccessRequest, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "requestID")

		// Solo el paciente dueño de los documentos responde.
		current, err := svc.GetRequest(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if current.PatientID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ar, err := decide(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(ar))
	}
}

// listMyRequestsHandler godoc
// @Summary  Historial de solicitudes del usuario (por rol)
// @Tags     access-requests
// @Produce  json
// @Param    status query string false "filtro CSV: pending,approved,denied,expired"
// @Success  200 {array} requestResponse
// @Failure  401,403 {string} string
// @Router   /me/access-requests [get]
func listMyRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		allowed := parseStatusFilter(r.URL.Query().Get("status"))

		var (
			items []AccessRequest
			err   error
		)
		switch claims.Role {
		case auth.RoleDoctor:
			items, err = svc.ListForDoctor(r.Context(), claims.UserID)
		case auth.RolePatient:
			items, err = svc.ListForPatient(r.Context(), claims.UserID)
		default:
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]requestResponse, 0, len(items))
		for _, ar := range items {
			if len(allowed) > 0 {
				if _, ok := allowed[ar.Status]; !ok {
					continue
				}
			}
			out = append(out, toRequestResponse(ar))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// checkAccessHandler godoc
// @Summary  Consultar si el médico tiene acceso vigente al paciente
// @Tags     access-requests
// @Produce  json
// @Param    patientID path string true "id del paciente"
// @Success  200 {object} accessResponse
// @Failure  401,403 {string} string
// @Router   /patients/{patientID}/access [get]
func checkAccessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsDoctor() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		active, err := svc.HasActiveAccess(r.Context(), claims.UserID, patientID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, accessResponse{
			DoctorID:  claims.UserID,
			PatientID: patientID,
			Active:    active,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRequestResponse(ar AccessRequest) requestResponse {
	docs := ar.Documents
	if docs == nil {
		docs = []string{}
	}
	return requestResponse{
		ID:           ar.ID,
		DoctorID:     ar.DoctorID,
		DoctorName:   ar.DoctorName,
		PatientID:    ar.PatientID,
		PatientName:  ar.PatientName,
		RequestDate:  ar.RequestDate,
		Status:       ar.Status,
		ApprovalDate: ar.ApprovalDate,
		ExpiryDate:   ar.ExpiryDate,
		Reason:       ar.Reason,
		Documents:    docs,
	}
}

func parseStatusFilter(raw string) map[Status]struct{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[Status]struct{}{}
	for _, p := range strings.Split(raw, ",") {
		s := Status(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
