package similarity

import (
	"fmt"
	"sort"
	"strings"
)

var (
	highImpactTerms     = []string{"severe", "extreme", "critical", "acute"}
	moderateImpactTerms = []string{"moderate", "persistent"}
)

// ExtractKeyDifferences lists tokens present in only one of the two descriptions,
// most clinically significant first, capped at DefaultMaxDifferences.
func ExtractKeyDifferences(current, historical string) []KeyDifference {
	return extractKeyDifferences(current, historical, DefaultMaxDifferences)
}

func extractKeyDifferences(current, historical string, limit int) []KeyDifference {
	cur := newTokenSet(strings.ToLower(current))
	hist := newTokenSet(strings.ToLower(historical))

	diffs := []KeyDifference{}
	for _, t := range cur.without(hist) {
		diffs = append(diffs, newKeyDifference(t, SideCurrent))
	}
	for _, t := range hist.without(cur) {
		diffs = append(diffs, newKeyDifference(t, SideHistorical))
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		return significanceRank(diffs[i].ClinicalSignificance) > significanceRank(diffs[j].ClinicalSignificance)
	})

	if limit >= 0 && len(diffs) > limit {
		diffs = diffs[:limit]
	}
	return diffs
}

func newKeyDifference(token string, side DifferenceSide) KeyDifference {
	d := KeyDifference{
		Type:                 side,
		Symptom:              token,
		Category:             CategoryGeneral,
		DisplayColor:         "gray",
		DisplayIcon:          "circle",
		ClinicalSignificance: SignificanceLow,
		ClinicalImpact:       AssessClinicalImpact(token),
	}
	if k, ok := classify(token); ok {
		d.Category = k.Category
		d.DisplayColor = k.DisplayColor
		d.DisplayIcon = k.DisplayIcon
		d.ClinicalSignificance = significanceOf(k.Category)
	}

	if side == SideCurrent {
		d.Description = fmt.Sprintf("%q appears in the current symptoms but not in the historical case", token)
	} else {
		d.Description = fmt.Sprintf("%q appeared in the historical case but not in the current symptoms", token)
	}
	return d
}

func significanceRank(s Significance) int {
	switch s {
	case SignificanceHigh:
		return 3
	case SignificanceModerate:
		return 2
	case SignificanceLow:
		return 1
	default:
		return 0
	}
}

// AssessClinicalImpact derives severity, urgency and what to monitor for a symptom token.
func AssessClinicalImpact(symptom string) ClinicalImpact {
	s := strings.ToLower(symptom)
	impact := ClinicalImpact{
		Severity:   "low",
		Urgency:    "routine",
		Monitoring: []string{},
	}

	switch {
	case containsAny(s, highImpactTerms):
		impact.Severity = "high"
		impact.Urgency = "immediate"
		impact.Monitoring = append(impact.Monitoring, "Vital signs", "Pain level", "Consciousness")
	case containsAny(s, moderateImpactTerms):
		impact.Severity = "moderate"
		impact.Urgency = "urgent"
		impact.Monitoring = append(impact.Monitoring, "Symptom progression", "Pain level")
	}

	if strings.Contains(s, "fever") {
		impact.Monitoring = append(impact.Monitoring, "Temperature")
	}
	if strings.Contains(s, "chest") || strings.Contains(s, "heart") {
		impact.Monitoring = append(impact.Monitoring, "ECG", "Blood pressure")
	}
	if strings.Contains(s, "breathing") || strings.Contains(s, "respiratory") {
		impact.Monitoring = append(impact.Monitoring, "Oxygen saturation", "Respiratory rate")
	}
	return impact
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
