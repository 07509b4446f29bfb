package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"clinic-similar-cases/internal/similarity"
)

var (
	// ErrNotConfigured means no language model is set up; callers rank locally.
	ErrNotConfigured = errors.New("analyst not configured")
	// ErrMalformedResponse means the model answered with something we cannot use.
	ErrMalformedResponse = errors.New("malformed analyst response")
)

// Analyst ranks historical cases with a language model.
type Analyst interface {
	Name() string
	RankSimilarCases(ctx context.Context, symptoms string, cases []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error)
}

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	RatePerSec  float64
	HTTPTimeout time.Duration
}

// New builds the analyst for provider ("deepseek", "ollama" or "none").
func New(provider string, opts Options) (Analyst, error) {
	switch provider {
	case "deepseek":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w: deepseek api key missing", ErrNotConfigured)
		}
		return NewDeepSeekClient(opts), nil
	case "ollama":
		return NewOllamaClient(opts), nil
	case "", "none":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, provider)
	}
}

func newLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
