package cases

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-similar-cases/internal/similarity"
)

// SourceHeuristic marks results produced by the local similarity scorer.
const SourceHeuristic = "heuristic"

// Record is a past patient encounter owned by one doctor.
type Record struct {
	ID               uuid.UUID `json:"id" db:"id"`
	DoctorID         uuid.UUID `json:"doctor_id" db:"doctor_id"`
	PatientName      string    `json:"patient_name" db:"patient_name"`
	Symptoms         string    `json:"symptoms" db:"symptoms"`
	Diagnosis        string    `json:"diagnosis" db:"diagnosis"`
	TreatmentOutcome string    `json:"treatment_outcome" db:"treatment_outcome"`
	VisitDate        time.Time `json:"visit_date" db:"visit_date"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// HistoricalCase converts the record into the scorer's input shape.
func (r Record) HistoricalCase() similarity.HistoricalCase {
	var visit string
	if !r.VisitDate.IsZero() {
		visit = r.VisitDate.UTC().Format(time.RFC3339)
	}
	return similarity.HistoricalCase{
		PatientName:      strings.TrimSpace(r.PatientName),
		Symptoms:         strings.TrimSpace(r.Symptoms),
		Diagnosis:        strings.TrimSpace(r.Diagnosis),
		VisitDate:        visit,
		TreatmentOutcome: strings.TrimSpace(r.TreatmentOutcome),
	}
}

// Analysis is the similar-cases answer for one doctor and one symptom description.
type Analysis struct {
	DoctorID    uuid.UUID                      `json:"doctor_id"`
	Symptoms    string                         `json:"symptoms"`
	Cases       []similarity.RankedCaseSummary `json:"cases"`
	Fallback    bool                           `json:"fallback"`
	Source      string                         `json:"source"`
	Message     string                         `json:"message,omitempty"`
	GeneratedAt time.Time                      `json:"generated_at"`
}
