package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
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
	DefaultTTSURL   = "https://dashscope-intl.aliyuncs.com/api/v1/services/aigc/multimodal-generation/generation"
	DefaultTTSModel = "qwen-tts"
	DefaultTTSVoice = "Cherry"

	ttsBreakerName = "qwen-tts"
)

type QwenTTSConfig struct {
	APIKey     string
	URL        string
	Model      string
	Voice      string
	HTTPClient domain.HTTPClient
	Breaker    BreakerSettings
	Metrics    *metrics.Metrics
	Logger     logger.Logger
}

// QwenTTSClient calls the DashScope speech synthesis endpoint.
type QwenTTSClient struct {
	apiKey     string
	url        string
	model      string
	voice      string
	httpClient domain.HTTPClient
	cb         *gobreaker.CircuitBreaker[*domain.Speech]
	logger     logger.Logger
}

func NewQwenTTSClient(cfg QwenTTSConfig) *QwenTTSClient {
	if cfg.URL == "" {
		cfg.URL = DefaultTTSURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultTTSVoice
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Breaker == (BreakerSettings{}) {
		cfg.Breaker = DefaultBreakerSettings()
	}
	return &QwenTTSClient{
		apiKey:     cfg.APIKey,
		url:        cfg.URL,
		model:      cfg.Model,
		voice:      cfg.Voice,
		httpClient: cfg.HTTPClient,
		cb:         newBreaker[*domain.Speech](ttsBreakerName, cfg.Breaker, cfg.Metrics, cfg.Logger),
		logger:     cfg.Logger,
	}
}

var _ domain.TTSClient = (*QwenTTSClient)(nil)

func (c *QwenTTSClient) DefaultVoice() string {
	return c.voice
}

type ttsRequest struct {
	Model string   `json:"model"`
	Input ttsInput `json:"input"`
}

type ttsInput struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (c *QwenTTSClient) Synthesize(ctx context.Context, req domain.SpeechRequest) (*domain.Speech, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "QwenTTSClient", "Synthesize")
	defer span.End()

	if c.apiKey == "" {
		return nil, domain.ErrNoQwenKey
	}
	if req.Voice == "" {
		req.Voice = c.voice
	}

	speech, err := c.cb.Execute(func() (*domain.Speech, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		if breakerRejected(err) {
			return nil, &domain.ErrUpstream{Service: "tts", Err: domain.ErrUpstreamUnavailable}
		}
		return nil, err
	}
	return speech, nil
}

func (c *QwenTTSClient) post(ctx context.Context, req domain.SpeechRequest) (*domain.Speech, error) {
	body, err := json.Marshal(ttsRequest{
		Model: c.model,
		Input: ttsInput{Text: req.Text, Voice: req.Voice},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create tts request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "tts", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "tts", Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrUpstream{Service: "tts", StatusCode: resp.StatusCode, Err: errors.New(upstreamMessage(respBody, resp.StatusCode))}
	}

	return parseSpeech(respBody)
}

// parseSpeech probes the known DashScope response layouts once and returns
// the normalised speech.
func parseSpeech(body []byte) (*domain.Speech, error) {
	parsed := gjson.ParseBytes(body)

	for _, p := range []string{"output.audio.url", "output.audio_url", "output.url"} {
		if u := parsed.Get(p); u.Type == gjson.String && u.String() != "" {
			return &domain.Speech{URL: u.String(), Format: formatFromURL(u.String())}, nil
		}
	}

	for _, p := range []string{"output.audio.data", "output.audio"} {
		d := parsed.Get(p)
		if d.Type != gjson.String || d.String() == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.String())
		if err != nil {
			return nil, &domain.ErrUpstream{Service: "tts", Err: fmt.Errorf("invalid base64 audio: %w", err)}
		}
		return &domain.Speech{Data: data, Format: domain.AudioFormatWAV}, nil
	}

	return nil, &domain.ErrUpstream{Service: "tts", Err: errors.New("response carries no audio")}
}

func formatFromURL(raw string) domain.AudioFormat {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if strings.EqualFold(path.Ext(raw), ".mp3") {
		return domain.AudioFormatMP3
	}
	return domain.AudioFormatWAV
}
