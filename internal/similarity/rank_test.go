package similarity

import (
	"fmt"
	"math"
	"testing"
)

func TestGenerateInsights_WithSeverity(t *testing.T) {
	c := HistoricalCase{
		PatientName:      "Jane Roe",
		Symptoms:         "Severe cough with fever",
		Diagnosis:        "Pneumonia",
		VisitDate:        "2024-03-05T10:00:00Z",
		TreatmentOutcome: "Recovered after antibiotics",
	}

	insights := GenerateInsights(c)
	if len(insights) != 4 {
		t.Fatalf("expected 4 insights, got %d", len(insights))
	}

	wantOrder := []InsightType{InsightDiagnosis, InsightOutcome, InsightSeverity, InsightTiming}
	for i, want := range wantOrder {
		if insights[i].Type != want {
			t.Errorf("insight %d: expected %s, got %s", i, want, insights[i].Type)
		}
	}

	if insights[0].Content != "Previous diagnosis: Pneumonia" {
		t.Errorf("unexpected diagnosis content: %q", insights[0].Content)
	}
	if insights[3].Content != "Seen on March 5, 2024" {
		t.Errorf("unexpected timing content: %q", insights[3].Content)
	}
	if insights[3].Importance != LevelMedium {
		t.Errorf("timing insight should be medium, got %s", insights[3].Importance)
	}
}

func TestGenerateInsights_WithoutSeverity(t *testing.T) {
	insights := GenerateInsights(HistoricalCase{Symptoms: "cough", VisitDate: "last spring"})
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	for _, in := range insights {
		if in.Type == InsightSeverity {
			t.Fatal("severity insight must only appear for severity keywords")
		}
	}
	if insights[2].Content != "Seen on last spring" {
		t.Errorf("unparseable dates should be shown verbatim, got %q", insights[2].Content)
	}
	if insights[0].Content != "Previous diagnosis: not recorded" {
		t.Errorf("unexpected empty diagnosis content: %q", insights[0].Content)
	}
}

func TestGenerateInsights_SortedByImportance(t *testing.T) {
	for _, symptoms := range []string{"mild rash", "rash", "extreme pain", ""} {
		insights := GenerateInsights(HistoricalCase{Symptoms: symptoms})
		for i := 1; i < len(insights); i++ {
			if importanceRank(insights[i-1].Importance) < importanceRank(insights[i].Importance) {
				t.Errorf("insights for %q not sorted: %+v", symptoms, insights)
			}
		}
	}
}

func TestGenerateTreatmentRecommendations_Static(t *testing.T) {
	a := GenerateTreatmentRecommendations(HistoricalCase{Diagnosis: "Migraine"})
	b := GenerateTreatmentRecommendations(HistoricalCase{Diagnosis: "Asthma", Symptoms: "wheezing"})

	if len(a.Immediate) != 2 || len(a.ShortTerm) != 2 || len(a.LongTerm) != 2 {
		t.Fatalf("expected two entries per bucket, got %d/%d/%d", len(a.Immediate), len(a.ShortTerm), len(a.LongTerm))
	}
	if a.Immediate[0].Action != b.Immediate[0].Action || a.LongTerm[1].Action != b.LongTerm[1].Action {
		t.Error("recommendations must not depend on case content")
	}
}

func TestRankSimilarCases_Empty(t *testing.T) {
	got := RankSimilarCases("any symptoms", nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
	if got := RankSimilarCases("any symptoms", []HistoricalCase{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestRankSimilarCases_IdenticalCaseFirst(t *testing.T) {
	cases := []HistoricalCase{
		{PatientName: "B", Symptoms: "severe headache with nausea", Diagnosis: "Migraine"},
		{PatientName: "C", Symptoms: "twisted ankle", Diagnosis: "Sprain"},
		{PatientName: "A", Symptoms: "mild headache", Diagnosis: "Tension headache", VisitDate: "2024-01-10"},
	}

	got := RankSimilarCases("mild headache", cases)
	if len(got) != 2 {
		t.Fatalf("expected 2 cases above the cut-off, got %d", len(got))
	}
	if got[0].PatientName != "A" {
		t.Fatalf("expected identical case first, got %s", got[0].PatientName)
	}
	if math.Abs(got[0].SimilarityScore-1.0) > 1e-9 {
		t.Errorf("expected score 1 for identical case, got %f", got[0].SimilarityScore)
	}

	ve := got[0].VisualElements
	if ve.Confidence != LevelHigh || ve.Severity != LevelLow || ve.Relevance != LevelHigh {
		t.Errorf("unexpected visual elements for identical case: %+v", ve)
	}
	if got[0].Diagnosis != "Tension headache" || got[0].VisitDate != "2024-01-10" {
		t.Errorf("case fields not carried through: %+v", got[0].HistoricalCase)
	}

	second := got[1]
	if second.PatientName != "B" {
		t.Fatalf("expected B second, got %s", second.PatientName)
	}
	if second.VisualElements.Severity != LevelHigh {
		t.Errorf("severe difference should mark severity high, got %s", second.VisualElements.Severity)
	}
	if second.VisualElements.Confidence != LevelMedium {
		t.Errorf("expected medium confidence for %f, got %s", second.SimilarityScore, second.VisualElements.Confidence)
	}
}

func TestRankSimilarCases_Invariants(t *testing.T) {
	symptoms := []string{
		"mild headache",
		"mild headache and fatigue",
		"severe headache",
		"chest pain",
		"persistent cough",
		"mild headache with nausea",
		"headache",
		"broken wrist",
		"mild fever",
	}
	var cases []HistoricalCase
	for i, s := range symptoms {
		cases = append(cases, HistoricalCase{PatientName: fmt.Sprintf("p%d", i), Symptoms: s})
	}

	got := RankSimilarCases("mild headache", cases)
	if len(got) > DefaultMaxResults {
		t.Fatalf("expected at most %d results, got %d", DefaultMaxResults, len(got))
	}
	for i, r := range got {
		if r.SimilarityScore <= DefaultMinScore {
			t.Errorf("result %s has score %f below cut-off", r.PatientName, r.SimilarityScore)
		}
		if i > 0 && got[i-1].SimilarityScore < r.SimilarityScore {
			t.Errorf("results not sorted at %d", i)
		}
		if len(r.KeyDifferences) > DefaultMaxDifferences {
			t.Errorf("too many differences for %s", r.PatientName)
		}
	}
}

func TestRankSimilarCases_TruncatesAndKeepsInputOrderOnTies(t *testing.T) {
	var cases []HistoricalCase
	for i := 0; i < 7; i++ {
		cases = append(cases, HistoricalCase{PatientName: fmt.Sprintf("p%d", i), Symptoms: "chest pain"})
	}

	got := RankSimilarCases("chest pain", cases)
	if len(got) != 5 {
		t.Fatalf("expected 5 results, got %d", len(got))
	}
	for i, r := range got {
		if r.PatientName != fmt.Sprintf("p%d", i) {
			t.Errorf("position %d: expected p%d, got %s", i, i, r.PatientName)
		}
	}
}

func TestRanker_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.MinScore = 0.9
	th.MaxResults = 1

	cases := []HistoricalCase{
		{PatientName: "close", Symptoms: "severe headache with nausea"},
		{PatientName: "same", Symptoms: "mild headache"},
		{PatientName: "same-again", Symptoms: "mild headache"},
	}
	got := NewRanker(th).Rank("mild headache", cases)
	if len(got) != 1 || got[0].PatientName != "same" {
		t.Fatalf("expected only the first identical case, got %+v", got)
	}
}

func TestRelevanceLevel(t *testing.T) {
	tests := []struct {
		n    int
		want Level
	}{
		{0, LevelLow},
		{DefaultMediumRelevanceInsights, LevelLow},
		{DefaultMediumRelevanceInsights + 1, LevelMedium},
		{DefaultHighRelevanceInsights, LevelMedium},
		{DefaultHighRelevanceInsights + 1, LevelHigh},
	}
	for _, tt := range tests {
		if got := relevanceLevel(make([]Insight, tt.n)); got != tt.want {
			t.Errorf("relevanceLevel(%d insights) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
