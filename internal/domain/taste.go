package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_taste_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain TasteRepository
//go:generate mockgen -destination mocks/mock_taste_service.go -package mocks github.com/CinePrep/cineprep/internal/domain TasteService

const (
	DefaultRecommendationCount  = 10
	MaxRecommendationCount      = 50
	MaxRecommendationCandidates = 200
)

// Weights maps a genre or decade label to a normalised weight in [0,1].
type Weights map[string]float64

func (w Weights) Value() (driver.Value, error) {
	if w == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(w)
}

func (w *Weights) Scan(value interface{}) error {
	if value == nil {
		*w = Weights{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("type assertion to []byte failed")
	}

	return json.Unmarshal(data, w)
}

type TasteProfile struct {
	UserID         string    `json:"user_id"`
	GenreWeights   Weights   `json:"genre_weights"`
	DecadeWeights  Weights   `json:"decade_weights"`
	AverageRating  float64   `json:"average_rating"`
	FavoritesCount int       `json:"favorites_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Recommendation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Title     string    `json:"title"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
	CreatedAt time.Time `json:"created_at"`
}

type RecommendRequest struct {
	Candidates []Movie `json:"candidates"`
	Limit      int     `json:"limit,omitempty"`
}

func (r *RecommendRequest) Validate() error {
	if len(r.Candidates) == 0 {
		return NewValidationError("candidates must contain at least one movie")
	}
	if len(r.Candidates) > MaxRecommendationCandidates {
		return NewValidationError(fmt.Sprintf("candidates cannot contain more than %d movies", MaxRecommendationCandidates))
	}
	for _, c := range r.Candidates {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if r.Limit <= 0 {
		r.Limit = DefaultRecommendationCount
	}
	if r.Limit > MaxRecommendationCount {
		r.Limit = MaxRecommendationCount
	}
	return nil
}

type TasteRepository interface {
	GetProfile(ctx context.Context, userID string) (*TasteProfile, error)
	SaveProfile(ctx context.Context, profile *TasteProfile) error
	// ReplaceRecommendations deletes the stored set and inserts recs in one transaction.
	ReplaceRecommendations(ctx context.Context, userID string, recs []*Recommendation) error
	ListRecommendations(ctx context.Context, userID string, limit int) ([]*Recommendation, error)
}

type TasteService interface {
	Profile(ctx context.Context, userID string) (*TasteProfile, error)
	Recommend(ctx context.Context, userID string, req RecommendRequest) ([]*Recommendation, error)
	Recommendations(ctx context.Context, userID string) ([]*Recommendation, error)
}
