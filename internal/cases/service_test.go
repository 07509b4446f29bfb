package cases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-similar-cases/internal/similarity"
)

// ── Fakes ──

type fakeRepo struct {
	records   map[uuid.UUID]*Record
	listErr   error
	lastLimit int
}

func newFakeRepo(recs ...Record) *fakeRepo {
	m := &fakeRepo{records: map[uuid.UUID]*Record{}}
	for i := range recs {
		r := recs[i]
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		m.records[r.ID] = &r
	}
	return m
}

func (m *fakeRepo) Create(_ context.Context, r *Record) error {
	r.ID = uuid.New()
	m.records[r.ID] = r
	return nil
}

func (m *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *fakeRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit int) ([]Record, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Record
	for _, r := range m.records {
		if r.DoctorID == doctorID && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeAnalyst struct {
	result []similarity.RankedCaseSummary
	err    error
	calls  int
	wait   bool
}

func (f *fakeAnalyst) Name() string { return "fake-llm" }

func (f *fakeAnalyst) RankSimilarCases(ctx context.Context, _ string, _ []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

type fakeReport struct {
	sent []*Analysis
	err  error
}

func (f *fakeReport) SendSimilarCasesReport(_ context.Context, a *Analysis) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}

var testDoctor = uuid.MustParse("6f1c1f8e-3c64-4a53-9d8c-6d1f0e1b2a10")

func headacheRepo() *fakeRepo {
	return newFakeRepo(
		Record{DoctorID: testDoctor, PatientName: "Ann", Symptoms: "mild headache", Diagnosis: "Tension headache",
			VisitDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		Record{DoctorID: uuid.New(), PatientName: "Other doctor's patient", Symptoms: "mild headache"},
	)
}

// ── Tests ──

func TestFindSimilarCases_NoAnalystUsesHeuristic(t *testing.T) {
	svc := NewService(headacheRepo(), nil, nil, nil, zerolog.Nop(), time.Second)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "  mild headache ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Fallback || a.Source != SourceHeuristic {
		t.Errorf("expected heuristic fallback, got source=%s fallback=%v", a.Source, a.Fallback)
	}
	if len(a.Cases) != 1 || a.Cases[0].PatientName != "Ann" {
		t.Fatalf("expected only the doctor's own case, got %+v", a.Cases)
	}
	if a.Cases[0].VisitDate != "2024-01-10T00:00:00Z" {
		t.Errorf("expected RFC 3339 visit date, got %q", a.Cases[0].VisitDate)
	}
	if a.Symptoms != "mild headache" {
		t.Errorf("expected trimmed symptoms, got %q", a.Symptoms)
	}
}

func TestFindSimilarCases_AnalystSuccess(t *testing.T) {
	analyst := &fakeAnalyst{result: []similarity.RankedCaseSummary{{SimilarityScore: 0.9}}}
	svc := NewService(headacheRepo(), analyst, nil, nil, zerolog.Nop(), time.Second)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "mild headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Fallback || a.Source != "fake-llm" {
		t.Errorf("expected analyst result, got source=%s fallback=%v", a.Source, a.Fallback)
	}
	if len(a.Cases) != 1 || a.Cases[0].SimilarityScore != 0.9 {
		t.Errorf("expected analyst cases, got %+v", a.Cases)
	}
}

func TestFindSimilarCases_AnalystFailureFallsBack(t *testing.T) {
	analyst := &fakeAnalyst{err: errors.New("quota exceeded")}
	svc := NewService(headacheRepo(), analyst, nil, nil, zerolog.Nop(), time.Second)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "mild headache")
	if err != nil {
		t.Fatalf("analyst failure must not surface: %v", err)
	}
	if analyst.calls != 1 {
		t.Errorf("expected one analyst call, got %d", analyst.calls)
	}
	if !a.Fallback || len(a.Cases) != 1 {
		t.Errorf("expected heuristic fallback with one case, got %+v", a)
	}
}

func TestFindSimilarCases_AnalystTimeoutFallsBack(t *testing.T) {
	analyst := &fakeAnalyst{wait: true}
	svc := NewService(headacheRepo(), analyst, nil, nil, zerolog.Nop(), 10*time.Millisecond)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "mild headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Fallback {
		t.Error("expected fallback after analyst timeout")
	}
}

func TestFindSimilarCases_EmptyHistorySkipsAnalyst(t *testing.T) {
	analyst := &fakeAnalyst{}
	svc := NewService(newFakeRepo(), analyst, nil, nil, zerolog.Nop(), time.Second)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "fever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyst.calls != 0 {
		t.Errorf("analyst should not be called without history")
	}
	if a.Cases == nil || len(a.Cases) != 0 {
		t.Errorf("expected empty non-nil cases, got %#v", a.Cases)
	}
}

func TestFindSimilarCases_Errors(t *testing.T) {
	svc := NewService(headacheRepo(), nil, nil, nil, zerolog.Nop(), time.Second)
	if _, err := svc.FindSimilarCases(context.Background(), testDoctor, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank symptoms, got %v", err)
	}

	repo := newFakeRepo()
	repo.listErr = errors.New("connection refused")
	svc = NewService(repo, nil, nil, nil, zerolog.Nop(), time.Second)
	if _, err := svc.FindSimilarCases(context.Background(), testDoctor, "fever"); err == nil {
		t.Error("expected repository error to be returned")
	}
}

func TestFindSimilarCases_CustomRanker(t *testing.T) {
	th := similarity.DefaultThresholds()
	th.MinScore = 1.5
	svc := NewService(headacheRepo(), nil, similarity.NewRanker(th), nil, zerolog.Nop(), time.Second)

	a, err := svc.FindSimilarCases(context.Background(), testDoctor, "mild headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Cases) != 0 {
		t.Errorf("expected the raised cut-off to drop every case, got %d", len(a.Cases))
	}
}

func TestCreateRecord(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, nil, zerolog.Nop(), time.Second)

	if err := svc.CreateRecord(context.Background(), &Record{Symptoms: "fever"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput without doctor, got %v", err)
	}
	if err := svc.CreateRecord(context.Background(), &Record{DoctorID: testDoctor, Symptoms: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput without symptoms, got %v", err)
	}

	rec := &Record{DoctorID: testDoctor, PatientName: "Bo", Symptoms: " cough "}
	if err := svc.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == uuid.Nil || rec.VisitDate.IsZero() || rec.Symptoms != "cough" {
		t.Errorf("expected id, default visit date and trimmed symptoms, got %+v", rec)
	}

	got, err := svc.GetRecord(context.Background(), rec.ID)
	if err != nil || got.PatientName != "Bo" {
		t.Fatalf("expected stored record, got %+v, %v", got, err)
	}
}

func TestSendReport(t *testing.T) {
	svc := NewService(headacheRepo(), nil, nil, nil, zerolog.Nop(), time.Second)
	if _, err := svc.SendReport(context.Background(), testDoctor, "mild headache"); !errors.Is(err, ErrReportingDisabled) {
		t.Errorf("expected ErrReportingDisabled, got %v", err)
	}

	report := &fakeReport{}
	svc = NewService(headacheRepo(), nil, nil, report, zerolog.Nop(), time.Second)
	a, err := svc.SendReport(context.Background(), testDoctor, "mild headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.sent) != 1 || report.sent[0] != a {
		t.Errorf("expected the analysis to be reported once, got %d", len(report.sent))
	}

	report.err = errors.New("telegram down")
	if _, err := svc.SendReport(context.Background(), testDoctor, "mild headache"); err == nil {
		t.Error("expected report error")
	}
}

func TestFindSimilarCases_HistoryLimit(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"default", nil, DefaultHistoryLimit},
		{"configured", []Option{WithHistoryLimit(1000)}, 1000},
		{"non-positive keeps default", []Option{WithHistoryLimit(0)}, DefaultHistoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := headacheRepo()
			svc := NewService(repo, nil, nil, nil, zerolog.Nop(), time.Second, tt.opts...)
			if _, err := svc.FindSimilarCases(context.Background(), testDoctor, "headache"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.lastLimit != tt.want {
				t.Errorf("expected history limit %d, got %d", tt.want, repo.lastLimit)
			}
		})
	}
}
