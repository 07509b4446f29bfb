package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinic-similar-cases/internal/similarity"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrReportingDisabled = errors.New("doctor reports are not configured")
)

// DefaultHistoryLimit bounds how many past records are compared per request.
const DefaultHistoryLimit = 200

// Analyst ranks similar cases through an external language model.
// We define it here to decouple from the specific agent implementation
type Analyst interface {
	Name() string
	RankSimilarCases(ctx context.Context, symptoms string, cases []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error)
}

// ReportService delivers an analysis to the doctor.
type ReportService interface {
	SendSimilarCasesReport(ctx context.Context, a *Analysis) error
}

type Service interface {
	CreateRecord(ctx context.Context, r *Record) error
	GetRecord(ctx context.Context, id uuid.UUID) (*Record, error)
	FindSimilarCases(ctx context.Context, doctorID uuid.UUID, symptoms string) (*Analysis, error)
	SendReport(ctx context.Context, doctorID uuid.UUID, symptoms string) (*Analysis, error)
}

type service struct {
	repo         Repository
	analyst      Analyst
	ranker       *similarity.Ranker
	reportSvc    ReportService
	logger       zerolog.Logger
	llmTimeout   time.Duration
	historyLimit int
}

// Option adjusts a service built by NewService.
type Option func(*service)

// WithHistoryLimit sets how many of the doctor's most recent records are
// compared per request. Non-positive values keep DefaultHistoryLimit.
func WithHistoryLimit(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// NewService wires the case service. analyst and report may be nil: without an
// analyst every request is answered by the local ranker, without a report
// service SendReport returns ErrReportingDisabled.
func NewService(repo Repository, analyst Analyst, ranker *similarity.Ranker, report ReportService, logger zerolog.Logger, llmTimeout time.Duration, opts ...Option) Service {
	if ranker == nil {
		ranker = similarity.NewRanker(similarity.DefaultThresholds())
	}
	s := &service{
		repo:         repo,
		analyst:      analyst,
		ranker:       ranker,
		reportSvc:    report,
		logger:       logger,
		llmTimeout:   llmTimeout,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateRecord(ctx context.Context, r *Record) error {
	if r.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor_id is required", ErrInvalidInput)
	}
	r.Symptoms = strings.TrimSpace(r.Symptoms)
	if r.Symptoms == "" {
		return fmt.Errorf("%w: symptoms are required", ErrInvalidInput)
	}
	if r.VisitDate.IsZero() {
		r.VisitDate = time.Now().UTC()
	}
	return s.repo.Create(ctx, r)
}

func (s *service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// FindSimilarCases ranks the doctor's past records against the given symptoms.
// The analyst is tried first; any analyst failure falls back to the local ranker.
func (s *service) FindSimilarCases(ctx context.Context, doctorID uuid.UUID, symptoms string) (*Analysis, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, fmt.Errorf("%w: symptoms are required", ErrInvalidInput)
	}

	records, err := s.repo.ListByDoctor(ctx, doctorID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load historical cases: %w", err)
	}

	historical := make([]similarity.HistoricalCase, 0, len(records))
	for _, r := range records {
		historical = append(historical, r.HistoricalCase())
	}

	a := &Analysis{
		DoctorID:    doctorID,
		Symptoms:    symptoms,
		GeneratedAt: time.Now().UTC(),
	}

	if s.analyst != nil && len(historical) > 0 {
		ranked, err := s.runAnalyst(ctx, symptoms, historical)
		if err == nil {
			a.Cases = ranked
			a.Source = s.analyst.Name()
			return a, nil
		}
		s.logger.Warn().Err(err).
			Str("analyst", s.analyst.Name()).
			Str("doctor_id", doctorID.String()).
			Msg("analyst unavailable, using heuristic ranking")
	}

	a.Cases = s.ranker.Rank(symptoms, historical)
	a.Source = SourceHeuristic
	a.Fallback = true

	s.logger.Debug().
		Str("doctor_id", doctorID.String()).
		Int("historical", len(historical)).
		Int("ranked", len(a.Cases)).
		Msg("similar cases ranked locally")
	return a, nil
}

func (s *service) runAnalyst(ctx context.Context, symptoms string, historical []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	ranked, err := s.analyst.RankSimilarCases(ctx, symptoms, historical)
	if err != nil {
		return nil, err
	}
	if ranked == nil {
		ranked = []similarity.RankedCaseSummary{}
	}
	return ranked, nil
}

func (s *service) SendReport(ctx context.Context, doctorID uuid.UUID, symptoms string) (*Analysis, error) {
	if s.reportSvc == nil {
		return nil, ErrReportingDisabled
	}

	a, err := s.FindSimilarCases(ctx, doctorID, symptoms)
	if err != nil {
		return nil, err
	}
	if err := s.reportSvc.SendSimilarCasesReport(ctx, a); err != nil {
		return nil, fmt.Errorf("send report: %w", err)
	}
	return a, nil
}
