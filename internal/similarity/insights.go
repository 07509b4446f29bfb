package similarity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

var visitDateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// GenerateInsights summarizes a historical case. Only the case itself is used,
// never the current symptoms.
func GenerateInsights(c HistoricalCase) []Insight {
	insights := []Insight{
		{
			Type:            InsightDiagnosis,
			Content:         fmt.Sprintf("Previous diagnosis: %s", orUnknown(c.Diagnosis)),
			Importance:      LevelHigh,
			DisplayColor:    "blue",
			DisplayIcon:     "clipboard",
			ClinicalContext: "Diagnosis recorded for a patient presenting with comparable symptoms",
		},
		{
			Type:            InsightOutcome,
			Content:         fmt.Sprintf("Treatment outcome: %s", orUnknown(c.TreatmentOutcome)),
			Importance:      LevelHigh,
			DisplayColor:    "green",
			DisplayIcon:     "check-circle",
			ClinicalContext: "Response to the treatment given in the historical case",
		},
		{
			Type:            InsightTiming,
			Content:         fmt.Sprintf("Seen on %s", formatVisitDate(c.VisitDate)),
			Importance:      LevelMedium,
			DisplayColor:    "gray",
			DisplayIcon:     "calendar",
			ClinicalContext: "Consider how long ago the historical visit took place",
		},
	}

	if markers := severityMarkers(c.Symptoms); len(markers) > 0 {
		insights = append(insights, Insight{
			Type:            InsightSeverity,
			Content:         fmt.Sprintf("Severity indicators in the historical case: %s", strings.Join(markers, ", ")),
			Importance:      LevelHigh,
			DisplayColor:    "red",
			DisplayIcon:     "alert-triangle",
			ClinicalContext: "The historical presentation carried explicit severity markers",
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return importanceRank(insights[i].Importance) > importanceRank(insights[j].Importance)
	})
	return insights
}

func severityMarkers(symptoms string) []string {
	lower := strings.ToLower(symptoms)
	var out []string
	for _, s := range lexicon {
		if s.Section != SectionSeverity {
			continue
		}
		for _, k := range s.Entries {
			if containsKeyword(lower, k.Keyword) {
				out = append(out, k.Keyword)
			}
		}
	}
	return out
}

func importanceRank(l Level) int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

func formatVisitDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "an unknown date"
	}
	for _, layout := range visitDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not recorded"
	}
	return s
}

// GenerateTreatmentRecommendations returns the fixed recommendation templates.
// The case is accepted for interface symmetry; its content does not change the output.
func GenerateTreatmentRecommendations(_ HistoricalCase) TreatmentRecommendationSet {
	return TreatmentRecommendationSet{
		Immediate: []Recommendation{
			{
				Action:            "Assess vital signs and current symptom severity",
				Priority:          "high",
				DisplayColor:      "red",
				DisplayIcon:       "activity",
				ClinicalRationale: "Establish a baseline before comparing against the historical course",
				Parameters:        []string{"Blood pressure", "Heart rate", "Temperature", "Oxygen saturation"},
			},
			{
				Action:            "Review the treatment given in the similar case",
				Priority:          "high",
				DisplayColor:      "red",
				DisplayIcon:       "clipboard",
				ClinicalRationale: "The prior response may indicate an effective first-line approach",
				Parameters:        []string{"Medication", "Dosage", "Response time"},
			},
		},
		ShortTerm: []Recommendation{
			{
				Action:            "Schedule a follow-up assessment",
				Priority:          "medium",
				DisplayColor:      "orange",
				DisplayIcon:       "calendar",
				ClinicalRationale: "Confirm the expected improvement occurs on a comparable timeline",
				Parameters:        []string{"Follow-up within 1-2 weeks", "Symptom diary"},
			},
			{
				Action:            "Monitor symptom progression",
				Priority:          "medium",
				DisplayColor:      "orange",
				DisplayIcon:       "trending-up",
				ClinicalRationale: "Divergence from the historical course may warrant a different diagnosis",
				Parameters:        []string{"Symptom intensity", "New symptoms", "Medication side effects"},
			},
		},
		LongTerm: []Recommendation{
			{
				Action:            "Establish a long-term management plan",
				Priority:          "low",
				DisplayColor:      "green",
				DisplayIcon:       "target",
				ClinicalRationale: "Reduce recurrence risk based on outcomes seen in similar cases",
				Parameters:        []string{"Lifestyle modification", "Preventive care", "Periodic review"},
			},
			{
				Action:            "Educate the patient on warning signs",
				Priority:          "low",
				DisplayColor:      "green",
				DisplayIcon:       "book-open",
				ClinicalRationale: "Early recognition shortens time to treatment if symptoms return",
				Parameters:        []string{"Red-flag symptoms", "When to seek care"},
			},
		},
	}
}
