package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/metrics"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

// maxAudioDownload bounds the size of upstream audio fetched for re-hosting.
const maxAudioDownload = 25 << 20

type AudioServiceConfig struct {
	TTS          domain.TTSClient
	Quota        domain.QuotaService
	Store        domain.AudioStore // optional
	HTTPClient   domain.HTTPClient
	DefaultVoice string
	MaxChars     int
	Metrics      *metrics.Metrics
	Logger       logger.Logger
}

// AudioService narrates a recap. The narrative is truncated before synthesis
// and the result always follows the AudioResult schema.
type AudioService struct {
	tts          domain.TTSClient
	quota        domain.QuotaService
	store        domain.AudioStore
	httpClient   domain.HTTPClient
	defaultVoice string
	maxChars     int
	metrics      *metrics.Metrics
	logger       logger.Logger
}

func NewAudioService(cfg AudioServiceConfig) *AudioService {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = domain.MaxNarrativeChars
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = DefaultTTSVoice
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &AudioService{
		tts:          cfg.TTS,
		quota:        cfg.Quota,
		store:        cfg.Store,
		httpClient:   cfg.HTTPClient,
		defaultVoice: cfg.DefaultVoice,
		maxChars:     cfg.MaxChars,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

var _ domain.AudioService = (*AudioService)(nil)

func (s *AudioService) Generate(ctx context.Context, userID string, req domain.GenerateAudioRequest) (*domain.AudioResult, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "AudioService", "Generate")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, usage, err := s.quota.Check(ctx, userID, domain.UsageKindAudio)
	if err != nil {
		var quotaErr *domain.ErrQuotaExceeded
		if errors.As(err, &quotaErr) {
			s.metrics.QuotaRejected(string(domain.UsageKindAudio))
			s.metrics.TTSRequest(metrics.OutcomeRejected)
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	text, truncated := domain.TruncateNarrative(req.Narrative, s.maxChars)
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = s.defaultVoice
	}
	tracing.AddAttribute(ctx, "characters", len([]rune(text)))
	tracing.AddAttribute(ctx, "truncated", truncated)

	speech, err := s.tts.Synthesize(ctx, domain.SpeechRequest{Text: text, Voice: voice})
	if err != nil {
		s.metrics.TTSRequest(metrics.OutcomeFailure)
		tracing.MarkSpanError(ctx, err)
		s.logger.WithField("user_id", userID).WithField("error", err.Error()).Error("Speech synthesis failed")
		return nil, err
	}

	result := &domain.AudioResult{
		Format:     speech.Format,
		Voice:      voice,
		Characters: len([]rune(text)),
		Truncated:  truncated,
		MovieTitle: strings.TrimSpace(req.MovieTitle),
	}

	if err := s.deliver(ctx, userID, speech, result); err != nil {
		s.metrics.TTSRequest(metrics.OutcomeFailure)
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	if err := result.Validate(); err != nil {
		s.metrics.TTSRequest(metrics.OutcomeFailure)
		return nil, &domain.ErrUpstream{Service: "tts", Err: err}
	}

	if err := s.quota.Record(ctx, userID, domain.UsageDelta{Audio: 1}); err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	result.Remaining = domain.Remaining(plan.Limit(domain.UsageKindAudio), usage.Count(domain.UsageKindAudio)+1)
	s.metrics.TTSRequest(metrics.OutcomeSuccess)
	return result, nil
}

// deliver fills exactly one of AudioURL and AudioBase64. With a store the
// audio is re-hosted and a presigned URL is returned.
func (s *AudioService) deliver(ctx context.Context, userID string, speech *domain.Speech, result *domain.AudioResult) error {
	if s.store == nil {
		if speech.URL != "" {
			result.AudioURL = speech.URL
			return nil
		}
		result.AudioBase64 = base64.StdEncoding.EncodeToString(speech.Data)
		return nil
	}

	data := speech.Data
	if len(data) == 0 {
		var err error
		data, err = s.download(ctx, speech.URL)
		if err != nil {
			return err
		}
	}

	key := fmt.Sprintf("audio/%s/%s.%s", userID, uuid.New().String(), speech.Format)
	url, err := s.store.Put(ctx, key, data, speech.Format)
	if err != nil {
		return err
	}
	result.AudioURL = url
	return nil
}

func (s *AudioService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "tts", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrUpstream{Service: "tts", StatusCode: resp.StatusCode, Err: errors.New("audio download failed")}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioDownload+1))
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "tts", Err: fmt.Errorf("failed to read audio: %w", err)}
	}
	if len(data) > maxAudioDownload {
		return nil, &domain.ErrUpstream{Service: "tts", Err: errors.New("audio exceeds the download limit")}
	}
	return data, nil
}
