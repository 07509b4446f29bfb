package similarity

import "sort"

const (
	DefaultMinScore         = 0.2
	DefaultHighConfidence   = 0.7
	DefaultMediumConfidence = 0.4
	DefaultMaxResults       = 5
	DefaultMaxDifferences   = 5
	// DefaultDisplayDifferences is how many differences compact views (PDF, CLI) print per case.
	DefaultDisplayDifferences = 3
	// Relevance is high with more than DefaultHighRelevanceInsights insights
	// and medium with more than DefaultMediumRelevanceInsights.
	DefaultHighRelevanceInsights   = 3
	DefaultMediumRelevanceInsights = 1
)

// Thresholds holds the tunable cut-offs of the ranking step.
type Thresholds struct {
	MinScore         float64
	HighConfidence   float64
	MediumConfidence float64
	MaxResults       int
	MaxDifferences   int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:         DefaultMinScore,
		HighConfidence:   DefaultHighConfidence,
		MediumConfidence: DefaultMediumConfidence,
		MaxResults:       DefaultMaxResults,
		MaxDifferences:   DefaultMaxDifferences,
	}
}

// Ranker ranks historical cases against current symptoms. The zero value is not
// useful; build one with NewRanker. A Ranker is safe for concurrent use.
type Ranker struct {
	th Thresholds
}

func NewRanker(th Thresholds) *Ranker {
	return &Ranker{th: th}
}

func (r *Ranker) Thresholds() Thresholds {
	return r.th
}

// RankSimilarCases ranks cases with the default thresholds.
func RankSimilarCases(currentSymptoms string, cases []HistoricalCase) []RankedCaseSummary {
	return NewRanker(DefaultThresholds()).Rank(currentSymptoms, cases)
}

// Rank scores every case, keeps those above MinScore and returns at most
// MaxResults of them ordered by descending score. Equal scores keep input order.
func (r *Ranker) Rank(currentSymptoms string, cases []HistoricalCase) []RankedCaseSummary {
	ranked := make([]RankedCaseSummary, 0, len(cases))
	for _, c := range cases {
		sim := CalculateSimilarityScore(currentSymptoms, c.Symptoms)
		if sim.Score <= r.th.MinScore {
			continue
		}

		diffs := extractKeyDifferences(currentSymptoms, c.Symptoms, r.th.MaxDifferences)
		insights := GenerateInsights(c)

		ranked = append(ranked, RankedCaseSummary{
			HistoricalCase:           c,
			SimilarityScore:          sim.Score,
			MatchedKeywords:          sim.MatchedKeywords,
			MatchedCategories:        sim.MatchedCategories,
			KeyDifferences:           diffs,
			Insights:                 insights,
			TreatmentRecommendations: GenerateTreatmentRecommendations(c),
			VisualElements: VisualElements{
				Severity:   severityLevel(diffs),
				Confidence: r.confidenceLevel(sim.Score),
				Relevance:  relevanceLevel(insights),
			},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})

	if r.th.MaxResults >= 0 && len(ranked) > r.th.MaxResults {
		ranked = ranked[:r.th.MaxResults]
	}
	return ranked
}

func severityLevel(diffs []KeyDifference) Level {
	hasModerate := false
	for _, d := range diffs {
		switch d.Category {
		case CategoryCritical:
			return LevelHigh
		case CategoryModerate:
			hasModerate = true
		}
	}
	if hasModerate {
		return LevelMedium
	}
	return LevelLow
}

func (r *Ranker) confidenceLevel(score float64) Level {
	switch {
	case score > r.th.HighConfidence:
		return LevelHigh
	case score > r.th.MediumConfidence:
		return LevelMedium
	default:
		return LevelLow
	}
}

func relevanceLevel(insights []Insight) Level {
	switch {
	case len(insights) > DefaultHighRelevanceInsights:
		return LevelHigh
	case len(insights) > DefaultMediumRelevanceInsights:
		return LevelMedium
	default:
		return LevelLow
	}
}
