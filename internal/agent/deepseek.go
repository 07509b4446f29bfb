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
	defaultDeepSeekURL   = "https://api.deepseek.com"
	defaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekClient ranks cases through the DeepSeek chat completions API.
type DeepSeekClient struct {
	apiKey     string
	baseURL    string
	model      string
	limiter    *rate.Limiter
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewDeepSeekClient(opts Options) *DeepSeekClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultDeepSeekURL
	}
	model := opts.Model
	if model == "" {
		model = defaultDeepSeekModel
	}
	return &DeepSeekClient{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      model,
		limiter:    newLimiter(opts.RatePerSec),
		httpClient: newHTTPClient(opts.HTTPTimeout),
	}
}

func (c *DeepSeekClient) Name() string { return "deepseek" }

func (c *DeepSeekClient) RankSimilarCases(ctx context.Context, symptoms string, cases []similarity.HistoricalCase) ([]similarity.RankedCaseSummary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("deepseek rate limit: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(symptoms, cases)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepseek request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("deepseek returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return parseRankedCases(out.Choices[0].Message.Content, cases)
}
