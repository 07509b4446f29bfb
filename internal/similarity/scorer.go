package similarity

import "strings"

const (
	// overlapWeight scales generic word overlap against keyword weights.
	overlapWeight = 2.0
	// categoryBonus is added per distinct matched category.
	categoryBonus = 0.1
)

// CalculateSimilarityScore compares two free-text symptom descriptions.
// A keyword counts only when both texts contain it as a substring.
func CalculateSimilarityScore(current, historical string) SimilarityResult {
	currentLower := strings.ToLower(current)
	historicalLower := strings.ToLower(historical)

	res := SimilarityResult{
		MatchedKeywords:   []Keyword{},
		MatchedCategories: []Category{},
		ClinicalContext: ClinicalContext{
			Severity:     []string{},
			Symptoms:     []string{},
			TimePatterns: []string{},
			RiskFactors:  []string{},
		},
	}

	var score, totalWeight float64
	for _, s := range lexicon {
		for _, k := range s.Entries {
			if !containsKeyword(currentLower, k.Keyword) || !containsKeyword(historicalLower, k.Keyword) {
				continue
			}
			score += k.Weight
			totalWeight += k.Weight
			res.MatchedKeywords = append(res.MatchedKeywords, k)
			res.MatchedCategories = appendUnique(res.MatchedCategories, k.Category)

			switch s.Section {
			case SectionSeverity:
				res.ClinicalContext.Severity = appendUnique(res.ClinicalContext.Severity, k.Keyword)
			case SectionSymptom:
				res.ClinicalContext.Symptoms = appendUnique(res.ClinicalContext.Symptoms, k.Keyword)
			case SectionTimePattern:
				res.ClinicalContext.TimePatterns = appendUnique(res.ClinicalContext.TimePatterns, k.Keyword)
			}
		}
	}

	score += wordOverlap(currentLower, historicalLower) * overlapWeight
	totalWeight += overlapWeight

	bonus := float64(len(res.MatchedCategories)) * categoryBonus
	score += bonus
	totalWeight += bonus

	if totalWeight > 0 {
		res.Score = score / totalWeight
	}

	res.ClinicalRelevance = ClinicalRelevance{
		SeverityMatch:    len(res.ClinicalContext.Severity) > 0,
		SymptomMatch:     len(res.ClinicalContext.Symptoms) > 0,
		TimePatternMatch: len(res.ClinicalContext.TimePatterns) > 0,
		CategoryMatch:    len(res.MatchedCategories) > 0,
	}
	return res
}

// wordOverlap is |A ∩ B| / max(|A|, |B|) over whitespace tokens, 0 when both are empty.
func wordOverlap(a, b string) float64 {
	at := newTokenSet(a)
	bt := newTokenSet(b)

	denom := len(at.order)
	if len(bt.order) > denom {
		denom = len(bt.order)
	}
	if denom == 0 {
		return 0
	}

	shared := 0
	for _, t := range at.order {
		if bt.has(t) {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

// containsKeyword is a plain substring test. "abdominal" matches inside
// "abdominally"; word boundaries are deliberately ignored.
func containsKeyword(text, keyword string) bool {
	return strings.Contains(text, keyword)
}

// tokenSet keeps whitespace tokens in first-seen order.
type tokenSet struct {
	order []string
	seen  map[string]struct{}
}

func newTokenSet(text string) tokenSet {
	fields := strings.Fields(text)
	ts := tokenSet{
		order: make([]string, 0, len(fields)),
		seen:  make(map[string]struct{}, len(fields)),
	}
	for _, f := range fields {
		if _, ok := ts.seen[f]; ok {
			continue
		}
		ts.seen[f] = struct{}{}
		ts.order = append(ts.order, f)
	}
	return ts
}

func (ts tokenSet) has(t string) bool {
	_, ok := ts.seen[t]
	return ok
}

// without returns tokens of ts missing from other, in ts order.
func (ts tokenSet) without(other tokenSet) []string {
	var out []string
	for _, t := range ts.order {
		if !other.has(t) {
			out = append(out, t)
		}
	}
	return out
}

func appendUnique[T comparable](list []T, v T) []T {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
