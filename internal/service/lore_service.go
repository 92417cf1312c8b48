package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/cache"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/metrics"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const (
	defaultLoreCacheTTL          = 24 * time.Hour
	defaultLoreGenerationTimeout = 2 * time.Minute
)

// LoreServiceConfig contains the dependencies of the lore service.
// GenerationTimeout bounds a shared model call.
type LoreServiceConfig struct {
	Repo              domain.LoreRepository
	LLM               domain.LLMClient
	Quota             domain.QuotaService
	Preferences       domain.PreferencesRepository
	Cache             cache.Store
	CacheTTL          time.Duration
	Model             string
	Temperature       float64
	MaxTokens         int
	GenerationTimeout time.Duration
	Metrics           *metrics.Metrics
	Logger            logger.Logger
}

// LoreService generates spoiler-free recaps and keeps the user's history.
type LoreService struct {
	repo        domain.LoreRepository
	llm         domain.LLMClient
	quota       domain.QuotaService
	preferences domain.PreferencesRepository
	cache       cache.Store
	cacheTTL    time.Duration
	prompt      *LorePromptBuilder
	model       string
	temperature float64
	maxTokens   int
	genTimeout  time.Duration
	metrics     *metrics.Metrics
	logger      logger.Logger
	group       singleflight.Group
}

func NewLoreService(cfg LoreServiceConfig) *LoreService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultLoreCacheTTL
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultLoreGenerationTimeout
	}
	return &LoreService{
		repo:        cfg.Repo,
		llm:         cfg.LLM,
		quota:       cfg.Quota,
		preferences: cfg.Preferences,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		prompt:      NewLorePromptBuilder(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		genTimeout:  cfg.GenerationTimeout,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

var _ domain.LoreService = (*LoreService)(nil)

// cachedLore is what the lore cache stores for a key.
type cachedLore struct {
	Document   *domain.LoreDocument `json:"document"`
	Model      string               `json:"model"`
	TokensUsed int                  `json:"tokens_used"`
	CostUSD    float64              `json:"cost_usd"`
}

// Generate serves a recap from the cache or the model. The analysis credit is
// consumed on every served analysis, cache hits included.
func (s *LoreService) Generate(ctx context.Context, userID string, req domain.GenerateLoreRequest) (*domain.GenerateLoreResponse, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "LoreService", "Generate")
	defer span.End()
	tracing.AddAttribute(ctx, "movie_id", req.CurrentMovie.ID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, usage, err := s.quota.Check(ctx, userID, domain.UsageKindAnalysis)
	if err != nil {
		var quotaErr *domain.ErrQuotaExceeded
		if errors.As(err, &quotaErr) {
			s.metrics.QuotaRejected(string(domain.UsageKindAnalysis))
			s.metrics.LoreGenerated(metrics.OutcomeRejected)
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	prefs, err := s.preferencesFor(ctx, userID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	key := LoreCacheKey(req, prefs)
	result, cached, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, cached, err = s.generateOnce(ctx, key, req, prefs)
		if err != nil {
			s.metrics.LoreGenerated(metrics.OutcomeFailure)
			tracing.MarkSpanError(ctx, err)
			return nil, err
		}
	}

	analysis := &domain.LoreAnalysis{
		UserID:     userID,
		MovieID:    req.CurrentMovie.ID,
		MovieTitle: strings.TrimSpace(req.CurrentMovie.Title),
		Analysis:   result.Document,
		Model:      result.Model,
		Cached:     cached,
	}
	if !cached {
		analysis.TokensUsed = result.TokensUsed
		analysis.CostUSD = result.CostUSD
	}

	if err := s.repo.Create(ctx, analysis); err != nil {
		s.metrics.LoreGenerated(metrics.OutcomeFailure)
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	delta := domain.UsageDelta{
		Analyses: 1,
		Tokens:   int64(analysis.TokensUsed),
		CostUSD:  analysis.CostUSD,
	}
	if err := s.quota.Record(ctx, userID, delta); err != nil {
		s.metrics.LoreGenerated(metrics.OutcomeFailure)
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	s.metrics.LoreGenerated(metrics.OutcomeSuccess)
	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"movie_id": req.CurrentMovie.ID,
		"cached":   cached,
		"tokens":   analysis.TokensUsed,
	}).Info("Lore generated")

	return &domain.GenerateLoreResponse{
		ID:         analysis.ID,
		Analysis:   analysis.Analysis,
		Cached:     cached,
		Model:      analysis.Model,
		TokensUsed: analysis.TokensUsed,
		CostUSD:    analysis.CostUSD,
		Remaining:  domain.Remaining(plan.Limit(domain.UsageKindAnalysis), usage.Count(domain.UsageKindAnalysis)+1),
	}, nil
}

func (s *LoreService) preferencesFor(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs, err := s.preferences.Get(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.DefaultPreferences(userID), nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// lookup reads the lore cache. Cache failures are logged and treated as a miss.
func (s *LoreService) lookup(ctx context.Context, key string) (*cachedLore, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}

	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithField("key", key).WithField("error", err.Error()).Warn("Lore cache read failed")
		return nil, false, nil
	}
	s.metrics.LoreCacheLookup(found)
	if !found {
		return nil, false, nil
	}

	var entry cachedLore
	if err := json.Unmarshal(data, &entry); err != nil || entry.Document == nil {
		s.logger.WithField("key", key).Warn("Dropping undecodable lore cache entry")
		_ = s.cache.Delete(ctx, key)
		return nil, false, nil
	}
	return &entry, true, nil
}

// generateOnce collapses concurrent generations of the same key into one model
// call. Callers that joined another caller's call are reported as cached.
// The shared call runs detached from every caller's cancellation, bounded by
// the generation timeout; each caller only stops waiting when its own
// context ends.
func (s *LoreService) generateOnce(ctx context.Context, key string, req domain.GenerateLoreRequest, prefs *domain.Preferences) (*cachedLore, bool, error) {
	leader := false
	results := s.group.DoChan(key, func() (interface{}, error) {
		leader = true
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.genTimeout)
		defer cancel()
		return s.generate(genCtx, key, req, prefs)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*cachedLore), !leader, nil
	}
}

func (s *LoreService) generate(ctx context.Context, key string, req domain.GenerateLoreRequest, prefs *domain.Preferences) (*cachedLore, error) {
	messages, err := s.prompt.Build(req, prefs)
	if err != nil {
		return nil, err
	}

	completion, err := s.llm.ChatCompletion(ctx, domain.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	doc, err := ParseQwenResponse(completion.Content, req)
	if err != nil {
		s.logger.WithField("model", completion.Model).WithField("error", err.Error()).Warn("Model returned an unusable lore document")
		return nil, err
	}

	entry := &cachedLore{
		Document:   doc,
		Model:      completion.Model,
		TokensUsed: completion.TotalTokens,
		CostUSD:    CalculateCost(completion.TotalTokens, completion.Model),
	}

	if s.cache != nil {
		data, err := json.Marshal(entry)
		if err == nil {
			err = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
		if err != nil {
			s.logger.WithField("key", key).WithField("error", err.Error()).Warn("Lore cache write failed")
		}
	}
	return entry, nil
}

// LoreCacheKey identifies a generation by the current movie, the set of
// previous movies and the preferences rendered into the prompt: language,
// detail level and tone.
func LoreCacheKey(req domain.GenerateLoreRequest, prefs *domain.Preferences) string {
	ids := make([]int, 0, len(req.PreviousMovies))
	for _, m := range req.PreviousMovies {
		ids = append(ids, m.ID)
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	if prefs == nil {
		prefs = domain.DefaultPreferences("")
	}
	return fmt.Sprintf("lore:v2:%d:%s:%s:%s:%s", req.CurrentMovie.ID, strings.Join(parts, ","),
		prefs.Language, prefs.DetailLevel, prefs.Tone)
}

func (s *LoreService) History(ctx context.Context, userID string, req domain.ListHistoryRequest) (*domain.LoreHistory, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "LoreService", "History")
	defer span.End()

	req.Normalize()
	analyses, total, err := s.repo.List(ctx, userID, req.Limit, req.Offset)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	if analyses == nil {
		analyses = []*domain.LoreAnalysisSummary{}
	}

	return &domain.LoreHistory{
		Analyses: analyses,
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}, nil
}

func (s *LoreService) Get(ctx context.Context, userID, id string) (*domain.LoreAnalysis, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "LoreService", "Get")
	defer span.End()

	analysis, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return analysis, nil
}

func (s *LoreService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracing.StartServiceSpan(ctx, "LoreService", "Delete")
	defer span.End()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		tracing.MarkSpanError(ctx, err)
		return err
	}
	return nil
}
