package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_lore_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain LoreRepository
//go:generate mockgen -destination mocks/mock_lore_service.go -package mocks github.com/CinePrep/cineprep/internal/domain LoreService
//go:generate mockgen -destination mocks/mock_llm_client.go -package mocks github.com/CinePrep/cineprep/internal/domain LLMClient

const (
	MaxPreviousMovies = 12

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Movie is the TMDB-shaped movie descriptor sent by the client.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Year        int      `json:"year,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	VoteAverage float64  `json:"vote_average,omitempty"`
}

// ReleaseYear returns Year, falling back to the year prefix of ReleaseDate.
func (m Movie) ReleaseYear() int {
	if m.Year > 0 {
		return m.Year
	}
	if len(m.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(m.ReleaseDate[:4]); err == nil {
			return y
		}
	}
	return 0
}

func (m Movie) Validate() error {
	if m.ID <= 0 {
		return NewValidationError("movie id is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return NewValidationError(fmt.Sprintf("movie %d: title is required", m.ID))
	}
	return nil
}

type GenerateLoreRequest struct {
	CurrentMovie   Movie   `json:"currentMovie"`
	PreviousMovies []Movie `json:"previousMovies"`
}

func (r *GenerateLoreRequest) Validate() error {
	if err := r.CurrentMovie.Validate(); err != nil {
		return NewValidationError("currentMovie: " + err.(ValidationError).Message)
	}
	if len(r.PreviousMovies) == 0 {
		return NewValidationError("previousMovies must contain at least one movie")
	}
	if len(r.PreviousMovies) > MaxPreviousMovies {
		return NewValidationError(fmt.Sprintf("previousMovies cannot contain more than %d movies", MaxPreviousMovies))
	}
	seen := make(map[int]bool, len(r.PreviousMovies))
	for _, m := range r.PreviousMovies {
		if err := m.Validate(); err != nil {
			return NewValidationError("previousMovies: " + err.(ValidationError).Message)
		}
		if m.ID == r.CurrentMovie.ID {
			return NewValidationError("previousMovies cannot contain the current movie")
		}
		if seen[m.ID] {
			return NewValidationError(fmt.Sprintf("previousMovies contains movie %d twice", m.ID))
		}
		seen[m.ID] = true
	}
	return nil
}

// AudioMetadata describes the narration attached to a required movie.
type AudioMetadata struct {
	Available       bool   `json:"available"`
	Voice           string `json:"voice,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	URL             string `json:"url,omitempty"`
}

// RequiredMovie is one entry of the lore document.
type RequiredMovie struct {
	MovieID        int           `json:"movie_id"`
	Title          string        `json:"title"`
	Year           int           `json:"year,omitempty"`
	Narrative      string        `json:"narrative"`
	KeyFacts       []string      `json:"key_facts"`
	EmotionalBeats []string      `json:"emotional_beats"`
	Tone           string        `json:"tone"`
	Audio          AudioMetadata `json:"audio"`
}

// LoreDocument is the validated model output.
type LoreDocument struct {
	MovieID        int             `json:"movie_id"`
	MovieTitle     string          `json:"movie_title,omitempty"`
	RequiredMovies []RequiredMovie `json:"required_movies"`
	Summary        string          `json:"summary,omitempty"`
}

// LoreAnalysis is a persisted generation (user_analyses).
type LoreAnalysis struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	MovieID    int           `json:"movie_id"`
	MovieTitle string        `json:"movie_title"`
	Analysis   *LoreDocument `json:"analysis"`
	Model      string        `json:"model"`
	TokensUsed int           `json:"tokens_used"`
	CostUSD    float64       `json:"cost_usd"`
	Cached     bool          `json:"cached"`
	CreatedAt  time.Time     `json:"created_at"`
}

// LoreAnalysisSummary is a history row without the full document.
type LoreAnalysisSummary struct {
	ID                 string    `json:"id"`
	MovieID            int       `json:"movie_id"`
	MovieTitle         string    `json:"movie_title"`
	RequiredMovieCount int       `json:"required_movie_count"`
	Cached             bool      `json:"cached"`
	CreatedAt          time.Time `json:"created_at"`
}

type ListHistoryRequest struct {
	Limit  int
	Offset int
}

// Normalize clamps limit and offset into their allowed ranges.
func (r *ListHistoryRequest) Normalize() {
	if r.Limit <= 0 {
		r.Limit = DefaultHistoryLimit
	}
	if r.Limit > MaxHistoryLimit {
		r.Limit = MaxHistoryLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

type LoreHistory struct {
	Analyses []*LoreAnalysisSummary `json:"analyses"`
	Total    int                    `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// GenerateLoreResponse is returned by POST /api/lore/generate.
type GenerateLoreResponse struct {
	ID         string        `json:"id"`
	Analysis   *LoreDocument `json:"analysis"`
	Cached     bool          `json:"cached"`
	Model      string        `json:"model"`
	TokensUsed int           `json:"tokens_used"`
	CostUSD    float64       `json:"cost_usd"`
	Remaining  int           `json:"remaining_analyses"`
}

type LoreService interface {
	Generate(ctx context.Context, userID string, req GenerateLoreRequest) (*GenerateLoreResponse, error)
	History(ctx context.Context, userID string, req ListHistoryRequest) (*LoreHistory, error)
	Get(ctx context.Context, userID, id string) (*LoreAnalysis, error)
	Delete(ctx context.Context, userID, id string) error
}

type LoreRepository interface {
	Create(ctx context.Context, analysis *LoreAnalysis) error
	GetByID(ctx context.Context, userID, id string) (*LoreAnalysis, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*LoreAnalysisSummary, int, error)
	Delete(ctx context.Context, userID, id string) error
}

// ChatMessage is one OpenAI-compatible chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

type ChatCompletion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMClient issues a single completion call. Implementations do not retry.
type LLMClient interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletion, error)
}
