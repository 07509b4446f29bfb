package report

import (
	"fmt"
	"strings"
	"time"

	"clinic-similar-cases/internal/cases"
	"clinic-similar-cases/internal/similarity"
)

type LineKind int

const (
	LineTitle LineKind = iota
	LineHeading
	LineCase
	LineDetail
	LineNote
)

// Line is one printable row of a similar-cases summary. Confidence is set on
// LineCase rows so renderers can color or badge them.
type Line struct {
	Kind       LineKind
	Text       string
	Confidence similarity.Level
}

// Summary flattens an analysis into the rows shared by the PDF and the CLI.
func Summary(a *cases.Analysis) []Line {
	lines := []Line{
		{Kind: LineTitle, Text: "Similar cases report"},
		{Kind: LineDetail, Text: "Generated: " + a.GeneratedAt.Format("02.01.2006 15:04")},
		{Kind: LineDetail, Text: "Presenting symptoms: " + a.Symptoms},
	}
	if a.Fallback {
		lines = append(lines, Line{Kind: LineNote, Text: "Ranked by the local keyword scorer (" + a.Source + ")."})
	} else if a.Source != "" {
		lines = append(lines, Line{Kind: LineNote, Text: "Ranked by " + a.Source + "."})
	}
	if a.Message != "" {
		lines = append(lines, Line{Kind: LineNote, Text: a.Message})
	}

	if len(a.Cases) == 0 {
		return append(lines, Line{Kind: LineHeading, Text: "No similar cases found."})
	}

	for i, c := range a.Cases {
		lines = append(lines,
			Line{Kind: LineHeading, Text: fmt.Sprintf("%d. %s", i+1, orDash(c.PatientName))},
			Line{
				Kind:       LineCase,
				Text:       fmt.Sprintf("Similarity %.0f%% (%s confidence), severity %s", c.SimilarityScore*100, c.VisualElements.Confidence, c.VisualElements.Severity),
				Confidence: c.VisualElements.Confidence,
			},
			Line{Kind: LineDetail, Text: "Visit: " + visitDate(c.VisitDate)},
			Line{Kind: LineDetail, Text: "Symptoms: " + orDash(c.Symptoms)},
			Line{Kind: LineDetail, Text: "Diagnosis: " + orDash(c.Diagnosis)},
			Line{Kind: LineDetail, Text: "Outcome: " + orDash(c.TreatmentOutcome)},
		)

		diffs := c.KeyDifferences
		if len(diffs) > similarity.DefaultDisplayDifferences {
			diffs = diffs[:similarity.DefaultDisplayDifferences]
		}
		for _, d := range diffs {
			lines = append(lines, Line{Kind: LineDetail, Text: fmt.Sprintf("  - [%s] %s", d.ClinicalSignificance, d.Description)})
		}
		for _, in := range c.Insights {
			if in.Importance != similarity.LevelHigh {
				continue
			}
			lines = append(lines, Line{Kind: LineDetail, Text: "  * " + in.Content})
		}
	}
	return lines
}

// Text joins the summary into a plain message.
func Text(a *cases.Analysis) string {
	var b strings.Builder
	for _, l := range Summary(a) {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// MaxMessageRunes is the Telegram Bot API limit for one text message.
const MaxMessageRunes = 4096

// splitMessage cuts text into chunks of at most limit runes, breaking at line
// ends where possible. A single line longer than limit is hard-wrapped.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) <= limit {
			cur = append(cur, r...)
			continue
		}
		flush()
		for len(r) > limit {
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return chunks
}

func visitDate(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("02.01.2006")
	}
	return orDash(raw)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
