package similarity

// Section names one of the three lexicon groups.
type Section string

const (
	SectionSeverity    Section = "severity"
	SectionSymptom     Section = "symptom"
	SectionTimePattern Section = "time-pattern"
)

// Keyword is a weighted lexicon entry. Larger weights are more clinically significant.
type Keyword struct {
	Keyword      string   `json:"keyword"`
	Weight       float64  `json:"weight"`
	Category     Category `json:"category"`
	DisplayColor string   `json:"displayColor"`
	DisplayIcon  string   `json:"displayIcon"`
}

// LexiconSection is an ordered group of keywords. Declaration order matters:
// difference classification takes the first entry a token contains.
type LexiconSection struct {
	Section Section
	Entries []Keyword
}

var lexicon = []LexiconSection{
	{
		Section: SectionSeverity,
		Entries: []Keyword{
			{Keyword: "severe", Weight: 3.0, Category: CategoryCritical, DisplayColor: "red", DisplayIcon: "alert-triangle"},
			{Keyword: "extreme", Weight: 3.0, Category: CategoryCritical, DisplayColor: "red", DisplayIcon: "alert-triangle"},
			{Keyword: "critical", Weight: 3.0, Category: CategoryCritical, DisplayColor: "red", DisplayIcon: "alert-octagon"},
			{Keyword: "intense", Weight: 2.5, Category: CategoryCritical, DisplayColor: "red", DisplayIcon: "alert-triangle"},
			{Keyword: "moderate", Weight: 2.0, Category: CategoryModerate, DisplayColor: "orange", DisplayIcon: "alert-circle"},
			{Keyword: "persistent", Weight: 2.0, Category: CategoryModerate, DisplayColor: "orange", DisplayIcon: "alert-circle"},
			{Keyword: "worsening", Weight: 2.0, Category: CategoryModerate, DisplayColor: "orange", DisplayIcon: "trending-up"},
			{Keyword: "mild", Weight: 1.0, Category: CategoryMild, DisplayColor: "yellow", DisplayIcon: "info"},
			{Keyword: "slight", Weight: 1.0, Category: CategoryMild, DisplayColor: "yellow", DisplayIcon: "info"},
			{Keyword: "minor", Weight: 1.0, Category: CategoryMild, DisplayColor: "yellow", DisplayIcon: "info"},
		},
	},
	{
		Section: SectionSymptom,
		Entries: []Keyword{
			{Keyword: "chest", Weight: 2.5, Category: CategoryCardiac, DisplayColor: "pink", DisplayIcon: "heart"},
			{Keyword: "heart", Weight: 2.5, Category: CategoryCardiac, DisplayColor: "pink", DisplayIcon: "heart"},
			{Keyword: "palpitation", Weight: 2.5, Category: CategoryCardiac, DisplayColor: "pink", DisplayIcon: "activity"},
			{Keyword: "shortness of breath", Weight: 2.5, Category: CategoryRespiratory, DisplayColor: "blue", DisplayIcon: "wind"},
			{Keyword: "breathing", Weight: 2.5, Category: CategoryRespiratory, DisplayColor: "blue", DisplayIcon: "wind"},
			{Keyword: "cough", Weight: 2.0, Category: CategoryRespiratory, DisplayColor: "blue", DisplayIcon: "wind"},
			{Keyword: "wheezing", Weight: 2.0, Category: CategoryRespiratory, DisplayColor: "blue", DisplayIcon: "wind"},
			{Keyword: "seizure", Weight: 3.0, Category: CategoryNeurological, DisplayColor: "purple", DisplayIcon: "zap"},
			{Keyword: "headache", Weight: 2.0, Category: CategoryNeurological, DisplayColor: "purple", DisplayIcon: "brain"},
			{Keyword: "dizziness", Weight: 2.0, Category: CategoryNeurological, DisplayColor: "purple", DisplayIcon: "brain"},
			{Keyword: "numbness", Weight: 2.0, Category: CategoryNeurological, DisplayColor: "purple", DisplayIcon: "brain"},
			{Keyword: "abdominal", Weight: 1.5, Category: CategoryGastrointestinal, DisplayColor: "green", DisplayIcon: "circle-dot"},
			{Keyword: "nausea", Weight: 1.5, Category: CategoryGastrointestinal, DisplayColor: "green", DisplayIcon: "circle-dot"},
			{Keyword: "vomiting", Weight: 1.5, Category: CategoryGastrointestinal, DisplayColor: "green", DisplayIcon: "circle-dot"},
			{Keyword: "diarrhea", Weight: 1.5, Category: CategoryGastrointestinal, DisplayColor: "green", DisplayIcon: "circle-dot"},
			{Keyword: "fever", Weight: 1.5, Category: CategoryGeneral, DisplayColor: "gray", DisplayIcon: "thermometer"},
			{Keyword: "pain", Weight: 1.0, Category: CategoryGeneral, DisplayColor: "gray", DisplayIcon: "circle"},
			{Keyword: "fatigue", Weight: 1.0, Category: CategoryGeneral, DisplayColor: "gray", DisplayIcon: "battery-low"},
			{Keyword: "rash", Weight: 1.0, Category: CategoryGeneral, DisplayColor: "gray", DisplayIcon: "circle"},
		},
	},
	{
		Section: SectionTimePattern,
		Entries: []Keyword{
			{Keyword: "sudden", Weight: 2.0, Category: CategoryAcute, DisplayColor: "cyan", DisplayIcon: "zap"},
			{Keyword: "acute", Weight: 2.0, Category: CategoryAcute, DisplayColor: "cyan", DisplayIcon: "zap"},
			{Keyword: "onset", Weight: 1.5, Category: CategoryAcute, DisplayColor: "cyan", DisplayIcon: "clock"},
			{Keyword: "chronic", Weight: 1.5, Category: CategoryChronic, DisplayColor: "indigo", DisplayIcon: "clock"},
			{Keyword: "recurring", Weight: 1.5, Category: CategoryChronic, DisplayColor: "indigo", DisplayIcon: "repeat"},
			{Keyword: "intermittent", Weight: 1.0, Category: CategoryChronic, DisplayColor: "indigo", DisplayIcon: "repeat"},
			{Keyword: "weeks", Weight: 1.0, Category: CategoryChronic, DisplayColor: "indigo", DisplayIcon: "calendar"},
		},
	},
}

// Lexicon returns a copy of the keyword table in declaration order.
func Lexicon() []LexiconSection {
	out := make([]LexiconSection, len(lexicon))
	for i, s := range lexicon {
		entries := make([]Keyword, len(s.Entries))
		copy(entries, s.Entries)
		out[i] = LexiconSection{Section: s.Section, Entries: entries}
	}
	return out
}

// classify returns the first lexicon entry contained in token.
func classify(token string) (Keyword, bool) {
	for _, s := range lexicon {
		for _, k := range s.Entries {
			if containsKeyword(token, k.Keyword) {
				return k, true
			}
		}
	}
	return Keyword{}, false
}

func significanceOf(c Category) Significance {
	switch c {
	case CategoryCritical:
		return SignificanceHigh
	case CategoryModerate:
		return SignificanceModerate
	default:
		return SignificanceLow
	}
}
