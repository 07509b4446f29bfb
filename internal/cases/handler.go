package cases

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-similar-cases/internal/similarity"
)

const unavailableMessage = "Historical cases could not be loaded right now. No similar cases are shown."

type Handler struct {
	svc    Service
	logger zerolog.Logger
}

func NewHandler(svc Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type CreateRecordRequest struct {
	PatientName      string    `json:"patient_name"`
	Symptoms         string    `json:"symptoms"`
	Diagnosis        string    `json:"diagnosis"`
	TreatmentOutcome string    `json:"treatment_outcome"`
	VisitDate        time.Time `json:"visit_date"`
}

type SimilarCasesRequest struct {
	Symptoms string `json:"symptoms"`
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}

	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	rec := &Record{
		DoctorID:         doctorID,
		PatientName:      req.PatientName,
		Symptoms:         req.Symptoms,
		Diagnosis:        req.Diagnosis,
		TreatmentOutcome: req.TreatmentOutcome,
		VisitDate:        req.VisitDate,
	}
	if err := h.svc.CreateRecord(r.Context(), rec); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("create record failed")
		http.Error(w, "Failed to create record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid record ID", http.StatusBadRequest)
		return
	}

	rec, err := h.svc.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Record not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("record_id", id.String()).Msg("get record failed")
		http.Error(w, "Failed to load record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// FindSimilarCases never answers with an error status once the request is valid:
// data loading failures produce an empty list with an explanation.
func (h *Handler) FindSimilarCases(w http.ResponseWriter, r *http.Request) {
	doctorID, symptoms, ok := h.decodeSimilarCases(w, r)
	if !ok {
		return
	}

	a, err := h.svc.FindSimilarCases(r.Context(), doctorID, symptoms)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Str("doctor_id", doctorID.String()).Msg("similar cases unavailable")
		writeJSON(w, http.StatusOK, unavailableAnalysis(doctorID, symptoms))
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	doctorID, symptoms, ok := h.decodeSimilarCases(w, r)
	if !ok {
		return
	}

	a, err := h.svc.SendReport(r.Context(), doctorID, symptoms)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, a)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrReportingDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error().Err(err).Str("doctor_id", doctorID.String()).Msg("report failed")
		http.Error(w, "Report failed: "+err.Error(), http.StatusBadGateway)
	}
}

func (h *Handler) decodeSimilarCases(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return uuid.Nil, "", false
	}

	var req SimilarCasesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return uuid.Nil, "", false
	}
	return doctorID, req.Symptoms, true
}

func unavailableAnalysis(doctorID uuid.UUID, symptoms string) *Analysis {
	return &Analysis{
		DoctorID:    doctorID,
		Symptoms:    symptoms,
		Cases:       []similarity.RankedCaseSummary{},
		Fallback:    true,
		Source:      SourceHeuristic,
		Message:     unavailableMessage,
		GeneratedAt: time.Now().UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/doctors/{doctorID}/records", h.CreateRecord)
	r.Get("/records/{id}", h.GetRecord)
	r.Post("/doctors/{doctorID}/similar-cases", h.FindSimilarCases)
	r.Post("/doctors/{doctorID}/similar-cases/report", h.SendReport)
}
