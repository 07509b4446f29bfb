package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"clinic-similar-cases/internal/similarity"
)

const systemPrompt = `You are a clinical decision support assistant helping a doctor compare a new presentation with the doctor's own past cases.
Answer with a JSON array only. No prose, no markdown.`

const responseSchema = `Return at most %d of the most similar cases as a JSON array, most similar first. Each element:
{
  "caseIndex": <number of the case in the list above>,
  "similarityScore": <0..1>,
  "keyDifferences": [{"type": "current"|"historical", "symptom": "...", "category": "...", "clinicalSignificance": "high"|"moderate"|"low", "description": "...", "clinicalImpact": {"severity": "...", "urgency": "...", "monitoring": ["..."]}}],
  "insights": [{"type": "diagnosis"|"outcome"|"timing"|"severity", "content": "...", "importance": "high"|"medium"|"low", "clinicalContext": "..."}],
  "treatmentRecommendations": {"immediate": [{"action": "...", "priority": "...", "clinicalRationale": "...", "parameters": ["..."]}], "shortTerm": [], "longTerm": []},
  "visualElements": {"severity": "high"|"medium"|"low", "confidence": "high"|"medium"|"low", "relevance": "high"|"medium"|"low"}
}
Omit cases that are not meaningfully similar. Return [] if none are.`

func buildPrompt(symptoms string, cases []similarity.HistoricalCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current symptoms: %s\n\nHistorical cases:\n", symptoms)
	for i, c := range cases {
		fmt.Fprintf(&b, "%d. patient: %s | visit: %s | symptoms: %s | diagnosis: %s | outcome: %s\n",
			i+1, c.PatientName, c.VisitDate, c.Symptoms, c.Diagnosis, c.TreatmentOutcome)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, responseSchema, similarity.DefaultMaxResults)
	return b.String()
}

type rankedCase struct {
	CaseIndex int `json:"caseIndex"`
	similarity.RankedCaseSummary
}

// parseRankedCases decodes the model's answer. Case fields are always taken from
// the input list by caseIndex so the model cannot invent or alter records.
func parseRankedCases(content string, cases []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error) {
	payload := stripCodeFence(content)
	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in response", ErrMalformedResponse)
	}

	var raw []rankedCase
	if err := json.Unmarshal([]byte(payload[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	seen := make(map[int]bool, len(raw))
	out := make([]similarity.RankedCaseSummary, 0, len(raw))
	for _, r := range raw {
		idx := r.CaseIndex - 1
		if idx < 0 || idx >= len(cases) || seen[idx] {
			continue
		}
		seen[idx] = true

		summary := r.RankedCaseSummary
		summary.HistoricalCase = cases[idx]
		normalize(&summary)
		out = append(out, summary)
	}
	if len(raw) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid case references", ErrMalformedResponse)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})
	if len(out) > similarity.DefaultMaxResults {
		out = out[:similarity.DefaultMaxResults]
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func normalize(s *similarity.RankedCaseSummary) {
	if s.MatchedKeywords == nil {
		s.MatchedKeywords = []similarity.Keyword{}
	}
	if s.MatchedCategories == nil {
		s.MatchedCategories = []similarity.Category{}
	}
	if s.KeyDifferences == nil {
		s.KeyDifferences = []similarity.KeyDifference{}
	}
	if s.Insights == nil {
		s.Insights = []similarity.Insight{}
	}
}
