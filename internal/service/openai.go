package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"phonefinder/internal/config"
	"phonefinder/internal/engine"
	"phonefinder/internal/logging"
	"phonefinder/internal/utils"
)

// ErrExtractorDisabled is returned when the LLM extractor is switched off
var ErrExtractorDisabled = errors.New("llm extractor is not enabled")

const intentSystemPrompt = `Extract phone-shopping intent from the user message.
Return STRICT JSON with any of these keys:
- budget: number, USD
- os: "android" or "ios"
- prefer_small: boolean, true for compact phones (about 6.1")
- prefer_large: boolean, true for large phones (about 6.7")
- min_battery: integer, mAh
- min_ram: integer, GB
- min_storage: integer, GB
- min_camera: number, main camera megapixels
- brands: array of brand names the user wants
- avoid_brands: array of brand names the user rejects
- must_have: array, subset of ["5g", "wireless charging", "ip68", "esim", "fast charging", "telephoto", "ultrawide", "120hz"]
- min_year: integer
- max_year: integer
- camera_priority: boolean

Rules:
- Do not invent values. Omit anything the user did not state.
- Respond ONLY with the JSON object.

Examples:
Message: "small android under $600 with wireless charging"
Response: {"budget": 600, "os": "android", "prefer_small": true, "must_have": ["wireless charging"]}

Message: "anything but Samsung, big battery, at least 8GB RAM"
Response: {"avoid_brands": ["Samsung"], "min_battery": 5000, "min_ram": 8}`

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint and
// turns replies into intent deltas. Calls go through a rate limiter and a
// circuit breaker.
type OpenAIClient struct {
	config     *config.ExtractorConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*ChatCompletionResponse]
	logger     zerolog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.ExtractorConfig) *OpenAIClient {
	logger := logging.Component("llm")

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := max(cfg.Burst, 1)

	failures := uint32(5)
	if cfg.BreakerFailures > 0 {
		failures = uint32(cfg.BreakerFailures)
	}

	breaker := gobreaker.NewCircuitBreaker[*ChatCompletionResponse](gobreaker.Settings{
		Name:        "llm-extractor",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
		logger:     logger,
	}
}

// Name identifies the extractor in logs and metrics
func (c *OpenAIClient) Name() string {
	return "llm"
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.UseLLM && c.config.APIBase != ""
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrExtractorDisabled
	}

	if req.Model == "" {
		req.Model = c.config.Model
	}
	if req.Temperature == 0 && c.config.Temperature > 0 {
		req.Temperature = c.config.Temperature
	}
	if req.MaxTokens == 0 && c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return c.breaker.Execute(func() (*ChatCompletionResponse, error) {
		return c.doChatCompletion(ctx, req)
	})
}

func (c *OpenAIClient) doChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.APIBase, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// Extract asks the model for an intent delta. Keys outside the intent schema
// are dropped and feature names are canonicalised.
func (c *OpenAIClient) Extract(ctx context.Context, text string) (engine.RawIntent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return engine.RawIntent{}, nil
	}
	if !c.IsEnabled() {
		return nil, ErrExtractorDisabled
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Second)
		defer cancel()
	}

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in model response")
	}

	content := resp.Choices[0].Message.Content
	obj, err := utils.ParseJSONObject(content)
	if err != nil {
		c.logger.Debug().Str("content", truncate(content, 200)).Msg("unparseable model output")
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return cleanModelIntent(obj), nil
}

var intentKeys = map[string]bool{
	engine.KeyBudget: true, engine.KeyOS: true, engine.KeyPreferSmall: true, engine.KeyPreferLarge: true,
	engine.KeyMinBattery: true, engine.KeyMinRAM: true, engine.KeyMinStorage: true, engine.KeyMinCamera: true,
	engine.KeyBrands: true, engine.KeyAvoidBrands: true, engine.KeyMustHave: true,
	engine.KeyMinYear: true, engine.KeyMaxYear: true, engine.KeyCameraPriority: true,
}

func cleanModelIntent(obj map[string]any) engine.RawIntent {
	out := engine.RawIntent{}
	for k, v := range obj {
		if !intentKeys[k] || v == nil {
			continue
		}
		out[k] = v
	}

	// a model claiming both sizes has told us nothing
	if out[engine.KeyPreferSmall] == true && out[engine.KeyPreferLarge] == true {
		delete(out, engine.KeyPreferSmall)
		delete(out, engine.KeyPreferLarge)
	}

	if feats, ok := out[engine.KeyMustHave].([]any); ok {
		tags := make([]string, 0, len(feats))
		for _, f := range feats {
			if s, ok := f.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, utils.NormalizeFeature(s))
			}
		}
		if len(tags) == 0 {
			delete(out, engine.KeyMustHave)
		} else {
			out[engine.KeyMustHave] = tags
		}
	}

	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
