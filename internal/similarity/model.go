package similarity

// Category is the clinical category a lexicon keyword belongs to.
type Category string

const (
	CategoryCritical         Category = "critical"
	CategoryModerate         Category = "moderate"
	CategoryMild             Category = "mild"
	CategoryGeneral          Category = "general"
	CategoryRespiratory      Category = "respiratory"
	CategoryNeurological     Category = "neurological"
	CategoryGastrointestinal Category = "gastrointestinal"
	CategoryCardiac          Category = "cardiac"
	CategoryAcute            Category = "acute"
	CategoryChronic          Category = "chronic"
)

// Level is a three step ordinal used for insight importance and visual elements.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Significance ranks how clinically meaningful a differing symptom token is.
type Significance string

const (
	SignificanceHigh     Significance = "high"
	SignificanceModerate Significance = "moderate"
	SignificanceLow      Significance = "low"
)

// HistoricalCase is a past encounter from the requesting doctor's records.
// Callers normalize missing fields to empty strings before scoring.
type HistoricalCase struct {
	PatientName      string `json:"patientName"`
	Symptoms         string `json:"symptoms"`
	Diagnosis        string `json:"diagnosis"`
	VisitDate        string `json:"visitDate"`
	TreatmentOutcome string `json:"treatmentOutcome"`
}

type SimilarityResult struct {
	Score             float64           `json:"score"`
	MatchedKeywords   []Keyword         `json:"matchedKeywords"`
	MatchedCategories []Category        `json:"matchedCategories"`
	ClinicalContext   ClinicalContext   `json:"clinicalContext"`
	ClinicalRelevance ClinicalRelevance `json:"clinicalRelevance"`
}

// ClinicalContext groups matched keywords by lexicon section.
// RiskFactors is never populated by the scorer.
type ClinicalContext struct {
	Severity     []string `json:"severity"`
	Symptoms     []string `json:"symptoms"`
	TimePatterns []string `json:"timePatterns"`
	RiskFactors  []string `json:"riskFactors"`
}

type ClinicalRelevance struct {
	SeverityMatch    bool `json:"severityMatch"`
	SymptomMatch     bool `json:"symptomMatch"`
	TimePatternMatch bool `json:"timePatternMatch"`
	CategoryMatch    bool `json:"categoryMatch"`
}

// DifferenceSide tells which description a differing token came from.
type DifferenceSide string

const (
	SideCurrent    DifferenceSide = "current"
	SideHistorical DifferenceSide = "historical"
)

type KeyDifference struct {
	Type                 DifferenceSide `json:"type"`
	Symptom              string         `json:"symptom"`
	Category             Category       `json:"category"`
	DisplayColor         string         `json:"displayColor"`
	DisplayIcon          string         `json:"displayIcon"`
	ClinicalSignificance Significance   `json:"clinicalSignificance"`
	Description          string         `json:"description"`
	ClinicalImpact       ClinicalImpact `json:"clinicalImpact"`
}

type ClinicalImpact struct {
	Severity   string   `json:"severity"`
	Urgency    string   `json:"urgency"`
	Monitoring []string `json:"monitoring"`
}

type InsightType string

const (
	InsightDiagnosis InsightType = "diagnosis"
	InsightOutcome   InsightType = "outcome"
	InsightTiming    InsightType = "timing"
	InsightSeverity  InsightType = "severity"
)

type Insight struct {
	Type            InsightType `json:"type"`
	Content         string      `json:"content"`
	Importance      Level       `json:"importance"`
	DisplayColor    string      `json:"displayColor"`
	DisplayIcon     string      `json:"displayIcon"`
	ClinicalContext string      `json:"clinicalContext"`
}

type Recommendation struct {
	Action            string   `json:"action"`
	Priority          string   `json:"priority"`
	DisplayColor      string   `json:"displayColor"`
	DisplayIcon       string   `json:"displayIcon"`
	ClinicalRationale string   `json:"clinicalRationale"`
	Parameters        []string `json:"parameters"`
}

type TreatmentRecommendationSet struct {
	Immediate []Recommendation `json:"immediate"`
	ShortTerm []Recommendation `json:"shortTerm"`
	LongTerm  []Recommendation `json:"longTerm"`
}

type VisualElements struct {
	Severity   Level `json:"severity"`
	Confidence Level `json:"confidence"`
	Relevance  Level `json:"relevance"`
}

// RankedCaseSummary is one element of the ranked similar-cases response.
type RankedCaseSummary struct {
	HistoricalCase
	SimilarityScore          float64                    `json:"similarityScore"`
	MatchedKeywords          []Keyword                  `json:"matchedKeywords"`
	MatchedCategories        []Category                 `json:"matchedCategories"`
	KeyDifferences           []KeyDifference            `json:"keyDifferences"`
	Insights                 []Insight                  `json:"insights"`
	TreatmentRecommendations TreatmentRecommendationSet `json:"treatmentRecommendations"`
	VisualElements           VisualElements             `json:"visualElements"`
}
