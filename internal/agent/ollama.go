package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"clinic-similar-cases/internal/similarity"
)

const (
	defaultOllamaURL   = "http://localhost:11434/api"
	defaultOllamaModel = "llama3"
)

// OllamaClient ranks cases with a local Ollama server.
type OllamaClient struct {
	baseURL    string
	model      string
	limiter    *rate.Limiter
	httpClient *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(opts Options) *OllamaClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaClient{
		baseURL:    baseURL,
		model:      model,
		limiter:    newLimiter(opts.RatePerSec),
		httpClient: newHTTPClient(opts.HTTPTimeout),
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) RankSimilarCases(ctx context.Context, symptoms string, cases []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ollama rate limit: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(symptoms, cases),
		System: systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return parseRankedCases(out.Response, cases)
}
