package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medisync-hub/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// AccessChecker evita importar accessrequests (rompe ciclos).
// Debe derivar la vigencia de la fecha de expiración, no del status.
type AccessChecker interface {
	HasActiveAccess(ctx context.Context, doctorID, patientID string) (bool, error)
}

func RegisterRoutes(r chi.Router, svc *Service, access AccessChecker) {
	// Paciente: sus propios documentos
	r.Route("/me/records", func(mr chi.Router) {
		mr.Post("/", createRecordHandler(svc))
		mr.Get("/", listMyRecordsHandler(svc))
		mr.Post("/{recordID}/void", voidRecordHandler(svc))
	})

	// Médico: documentos de un paciente, detrás del gate de acceso
	r.Route("/patients/{patientID}/records", func(pr chi.Router) {
		pr.Get("/", listPatientRecordsHandler(svc, access))
		pr.Get("/{recordID}", getPatientRecordHandler(svc, access))
	})
}

// createRecordRequest es el cuerpo para subir un documento médico.
type createRecordRequest struct {
	Kind    Kind   `json:"kind" enums:"lab_report,prescription,imaging,discharge_summary,vaccination,other"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// recordResponse representa un documento médico devuelto por la API.
type recordResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createRecordHandler godoc
// @Summary Subir documento médico
// @Description El paciente autenticado registra un documento propio. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags records
// @Accept json
// @Produce json
// @Param payload body createRecordRequest true "Datos del documento"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / kind inválido / title requerido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /me/records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsPatient() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Kind:    req.Kind,
			Title:   req.Title,
			Content: req.Content,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec, true))
	}
}

// listMyRecordsHandler godoc
// @Summary Listar mis documentos
// @Tags records
// @Produce json
// @Param kind query string false "CSV de kinds"
// @Param include_voided query bool false "incluir anulados"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/records [get]
func listMyRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, "invalid kind filter", http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPatient(r.Context(), claims.UserID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponses(items, false))
	}
}

// voidRecordHandler godoc
// @Summary Anular documento propio
// @Tags records
// @Produce json
// @Param recordID path string true "ID del documento"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /me/records/{recordID}/void [post]
func voidRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.Void(r.Context(), chi.URLParam(r, "recordID"), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec, false))
	}
}

// listPatientRecordsHandler godoc
// @Summary Listar documentos de un paciente (médico con acceso vigente)
// @Description Requiere una solicitud aprobada y no vencida para el par (médico, paciente).
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param kind query string false "CSV de kinds"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/records [get]
func listPatientRecordsHandler(svc *Service, access AccessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !authorizeDoctor(w, r, access, patientID) {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, "invalid kind filter", http.StatusBadRequest)
			return
		}
		// el médico nunca ve anulados
		filter.IncludeVoided = false

		items, err := svc.ListByPatient(r.Context(), patientID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponses(items, false))
	}
}

// getPatientRecordHandler godoc
// @Summary Ver documento de un paciente (médico con acceso vigente)
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param recordID path string true "ID del documento"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /patients/{patientID}/records/{recordID} [get]
func getPatientRecordHandler(svc *Service, access AccessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !authorizeDoctor(w, r, access, patientID) {
			return
		}

		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		// no filtrar existencia de documentos de otros pacientes
		if rec.PatientID != patientID || rec.Status == StatusVoided {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec, true))
	}
}

// authorizeDoctor escribe la respuesta de error y devuelve false si no hay acceso.
func authorizeDoctor(w http.ResponseWriter, r *http.Request, access AccessChecker, patientID string) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !claims.IsDoctor() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}

	active, err := access.HasActiveAccess(r.Context(), claims.UserID, patientID)
	if err != nil || !active {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	kinds, err := ParseKinds(r.URL.Query().Get("kind"))
	if err != nil {
		return ListFilter{}, err
	}
	return ListFilter{
		Kinds:         kinds,
		IncludeVoided: strings.EqualFold(r.URL.Query().Get("include_voided"), "true"),
	}, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// En listados se omite el contenido.
func toRecordResponse(rec Record, withContent bool) recordResponse {
	out := recordResponse{
		ID:        rec.ID,
		PatientID: rec.PatientID,
		Kind:      rec.Kind,
		Title:     rec.Title,
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if withContent {
		out.Content = rec.Content
	}
	return out
}

func toRecordResponses(items []Record, withContent bool) []recordResponse {
	out := make([]recordResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, toRecordResponse(rec, withContent))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
