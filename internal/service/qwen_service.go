package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/metrics"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const (
	DefaultQwenBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"
	DefaultQwenModel   = "qwen-plus"

	qwenBreakerName = "qwen-chat"
)

// QwenClientConfig contains configuration for the Qwen chat client
type QwenClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient domain.HTTPClient
	Breaker    BreakerSettings
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

// QwenClient calls the OpenAI-compatible DashScope chat completions endpoint.
// Each call is a single POST guarded by a circuit breaker.
type QwenClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient domain.HTTPClient
	cb         *gobreaker.CircuitBreaker[*domain.ChatCompletion]
	metrics    *metrics.Metrics
	logger     logger.Logger
}

func NewQwenClient(cfg QwenClientConfig) *QwenClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultQwenBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultQwenModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Breaker == (BreakerSettings{}) {
		cfg.Breaker = DefaultBreakerSettings()
	}
	return &QwenClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		cb:         newBreaker[*domain.ChatCompletion](qwenBreakerName, cfg.Breaker, cfg.Metrics, cfg.Logger),
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

var _ domain.LLMClient = (*QwenClient)(nil)

// Configured reports whether an API key is set.
func (c *QwenClient) Configured() bool {
	return c.apiKey != ""
}

func (c *QwenClient) Model() string {
	return c.model
}

type qwenChatRequest struct {
	Model          string               `json:"model"`
	Messages       []domain.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature,omitempty"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	ResponseFormat *qwenResponseFormat  `json:"response_format,omitempty"`
}

type qwenResponseFormat struct {
	Type string `json:"type"`
}

func (c *QwenClient) ChatCompletion(ctx context.Context, req domain.ChatCompletionRequest) (*domain.ChatCompletion, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "QwenClient", "ChatCompletion")
	defer span.End()

	if !c.Configured() {
		return nil, domain.ErrNoQwenKey
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	tracing.AddAttribute(ctx, "model", model)

	start := time.Now()
	completion, err := c.cb.Execute(func() (*domain.ChatCompletion, error) {
		return c.post(ctx, model, req)
	})
	elapsed := time.Since(start)

	if err != nil {
		tracing.MarkSpanError(ctx, err)
		if breakerRejected(err) {
			c.metrics.ObserveLLMCall(model, metrics.OutcomeRejected, elapsed, 0, 0, 0)
			return nil, &domain.ErrUpstream{Service: "qwen", Err: domain.ErrUpstreamUnavailable}
		}
		c.metrics.ObserveLLMCall(model, metrics.OutcomeFailure, elapsed, 0, 0, 0)
		if c.logger != nil {
			c.logger.WithField("model", model).WithField("error", err.Error()).Error("Qwen chat completion failed")
		}
		return nil, err
	}

	cost := CalculateCost(completion.TotalTokens, completion.Model)
	c.metrics.ObserveLLMCall(model, metrics.OutcomeSuccess, elapsed, completion.PromptTokens, completion.CompletionTokens, cost)
	tracing.AddAttribute(ctx, "total_tokens", completion.TotalTokens)
	return completion, nil
}

func (c *QwenClient) post(ctx context.Context, model string, req domain.ChatCompletionRequest) (*domain.ChatCompletion, error) {
	payload := qwenChatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = &qwenResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "qwen", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "qwen", Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrUpstream{Service: "qwen", StatusCode: resp.StatusCode, Err: errors.New(upstreamMessage(respBody, resp.StatusCode))}
	}

	parsed := gjson.ParseBytes(respBody)
	content := parsed.Get("choices.0.message.content")
	if !content.Exists() {
		return nil, &domain.ErrUpstream{Service: "qwen", Err: errors.New("response has no choices")}
	}

	completion := &domain.ChatCompletion{
		Content:          content.String(),
		Model:            parsed.Get("model").String(),
		PromptTokens:     int(parsed.Get("usage.prompt_tokens").Int()),
		CompletionTokens: int(parsed.Get("usage.completion_tokens").Int()),
		TotalTokens:      int(parsed.Get("usage.total_tokens").Int()),
	}
	if completion.Model == "" {
		completion.Model = model
	}
	if completion.TotalTokens == 0 {
		completion.TotalTokens = completion.PromptTokens + completion.CompletionTokens
	}
	return completion, nil
}

// upstreamMessage extracts the error message of an OpenAI-compatible or
// DashScope-native error body.
func upstreamMessage(body []byte, status int) string {
	parsed := gjson.ParseBytes(body)
	for _, path := range []string{"error.message", "message", "error"} {
		if v := parsed.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		return text
	}
	return http.StatusText(status)
}
