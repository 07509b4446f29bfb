package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"clinic-similar-cases/internal/cases"
	"clinic-similar-cases/internal/similarity"
)

type fakeTelegram struct {
	messages  []string
	documents map[string][]byte
	err       error
}

func (f *fakeTelegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.messages = append(f.messages, text)
	return f.err
}

func (f *fakeTelegram) SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error {
	if f.documents == nil {
		f.documents = map[string][]byte{}
	}
	f.documents[fileName] = fileData
	return f.err
}

func sampleAnalysis() *cases.Analysis {
	ranker := similarity.NewRanker(similarity.DefaultThresholds())
	return &cases.Analysis{
		Symptoms: "severe headache and nausea",
		Cases: ranker.Rank("severe headache and nausea", []similarity.HistoricalCase{
			{PatientName: "Ann Lee", Symptoms: "severe headache with nausea", Diagnosis: "Migraine", VisitDate: "2024-03-01T00:00:00Z", TreatmentOutcome: "Resolved"},
		}),
		Fallback:    true,
		Source:      cases.SourceHeuristic,
		GeneratedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestSummary(t *testing.T) {
	lines := Summary(sampleAnalysis())

	if lines[0].Kind != LineTitle {
		t.Fatalf("expected title first, got %+v", lines[0])
	}
	text := Text(sampleAnalysis())
	for _, want := range []string{
		"Presenting symptoms: severe headache and nausea",
		"local keyword scorer (heuristic)",
		"1. Ann Lee",
		"Visit: 01.03.2024",
		"Diagnosis: Migraine",
		"Previous diagnosis: Migraine",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	var caseLine *Line
	for i := range lines {
		if lines[i].Kind == LineCase {
			caseLine = &lines[i]
		}
	}
	if caseLine == nil || caseLine.Confidence == "" {
		t.Fatalf("expected a case line with confidence, got %+v", caseLine)
	}
}

func TestSummary_NoCases(t *testing.T) {
	text := Text(&cases.Analysis{Symptoms: "cough", Cases: []similarity.RankedCaseSummary{}, Message: "history unavailable"})
	if !strings.Contains(text, "No similar cases found.") || !strings.Contains(text, "history unavailable") {
		t.Errorf("unexpected summary:\n%s", text)
	}
}

func TestSummary_LimitsDifferences(t *testing.T) {
	c := similarity.RankedCaseSummary{
		HistoricalCase: similarity.HistoricalCase{PatientName: "X"},
		KeyDifferences: make([]similarity.KeyDifference, 5),
	}
	for i := range c.KeyDifferences {
		c.KeyDifferences[i] = similarity.KeyDifference{Description: "diff", ClinicalSignificance: similarity.SignificanceLow}
	}
	text := Text(&cases.Analysis{Cases: []similarity.RankedCaseSummary{c}})
	if got := strings.Count(text, "diff"); got != similarity.DefaultDisplayDifferences {
		t.Errorf("expected %d differences, got %d", similarity.DefaultDisplayDifferences, got)
	}
}

func TestSendSimilarCasesReport_TextFallbackWithoutFont(t *testing.T) {
	var logs bytes.Buffer
	tg := &fakeTelegram{}
	svc := NewService(tg, 7, zerolog.New(&logs))
	svc.fontPaths = []string{"/nonexistent/font.ttf"}

	if err := svc.SendSimilarCasesReport(context.Background(), sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tg.messages) != 1 || len(tg.documents) != 0 {
		t.Fatalf("expected one text message, got %d messages and %d documents", len(tg.messages), len(tg.documents))
	}
	if !strings.Contains(logs.String(), "pdf font missing") {
		t.Errorf("expected warning to be logged, got %q", logs.String())
	}
}

func TestSendSimilarCasesReport_PDF(t *testing.T) {
	svc := NewService(&fakeTelegram{}, 7, zerolog.Nop())
	found := false
	for _, p := range svc.fontPaths {
		if _, err := os.Stat(p); err == nil {
			found = true
		}
	}
	if !found {
		t.Skip("DejaVuSans not installed")
	}

	tg := &fakeTelegram{}
	svc.tgClient = tg
	if err := svc.SendSimilarCasesReport(context.Background(), sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := tg.documents["similar_cases_20240501_093000.pdf"]
	if !ok {
		t.Fatalf("expected document upload, got %v", tg.documents)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Errorf("expected PDF payload")
	}
}

func TestSendSimilarCasesReport_PropagatesTelegramError(t *testing.T) {
	tg := &fakeTelegram{err: errors.New("chat not found")}
	svc := NewService(tg, 7, zerolog.Nop())
	svc.fontPaths = nil

	if err := svc.SendSimilarCasesReport(context.Background(), sampleAnalysis()); err == nil {
		t.Fatal("expected telegram error")
	}
}

func longAnalysis() *cases.Analysis {
	note := strings.Repeat("severe crushing chest pain radiating to the left arm with sweating, ", 6)
	historical := make([]similarity.HistoricalCase, 6)
	for i := range historical {
		historical[i] = similarity.HistoricalCase{
			PatientName:      "Patient " + string(rune('A'+i)),
			Symptoms:         note,
			Diagnosis:        "Acute coronary syndrome",
			VisitDate:        "2024-03-01T00:00:00Z",
			TreatmentOutcome: strings.Repeat("stented and discharged on dual antiplatelet therapy, ", 4),
		}
	}
	return &cases.Analysis{
		Symptoms:    note,
		Cases:       similarity.RankSimilarCases(note, historical),
		Fallback:    true,
		Source:      cases.SourceHeuristic,
		GeneratedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestSendSimilarCasesReport_LongTextIsSplit(t *testing.T) {
	a := longAnalysis()
	full := Text(a)
	if n := len([]rune(full)); n <= MaxMessageRunes {
		t.Fatalf("test analysis too short to need splitting: %d runes", n)
	}

	tg := &fakeTelegram{}
	svc := NewService(tg, 7, zerolog.Nop())
	svc.fontPaths = nil

	if err := svc.SendSimilarCasesReport(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tg.messages) < 2 {
		t.Fatalf("expected the summary in several messages, got %d", len(tg.messages))
	}
	for i, m := range tg.messages {
		if n := len([]rune(m)); n > MaxMessageRunes {
			t.Errorf("message %d has %d runes, limit is %d", i, n, MaxMessageRunes)
		}
	}
	if got := strings.Join(tg.messages, ""); got != full {
		t.Error("messages do not reassemble into the full summary in order")
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"fits", "ab\ncd\n", 10, []string{"ab\ncd\n"}},
		{"breaks at line end", "ab\ncd\nef\n", 6, []string{"ab\ncd\n", "ef\n"}},
		{"hard wraps long line", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"counts runes", "жжжж\n", 5, []string{"жжжж\n"}},
		{"empty", "", 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("splitMessage(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}
