package domain

import (
	"context"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_favorite_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain FavoriteRepository
//go:generate mockgen -destination mocks/mock_favorite_service.go -package mocks github.com/CinePrep/cineprep/internal/domain FavoriteService

type Favorite struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MovieID     int       `json:"movie_id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	ReleaseYear int       `json:"release_year,omitempty"`
	Genres      []string  `json:"genres"`
	VoteAverage float64   `json:"vote_average"`
	CreatedAt   time.Time `json:"created_at"`
}

type AddFavoriteRequest struct {
	MovieID     int      `json:"movie_id"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	VoteAverage float64  `json:"vote_average,omitempty"`
}

func (r *AddFavoriteRequest) Validate() error {
	if r.MovieID <= 0 {
		return NewValidationError("movie_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("title is required")
	}
	if r.VoteAverage < 0 || r.VoteAverage > 10 {
		return NewValidationError("vote_average must be between 0 and 10")
	}
	return nil
}

// ToFavorite builds the row for userID, deriving the year from the release date.
func (r *AddFavoriteRequest) ToFavorite(userID string) *Favorite {
	m := Movie{ID: r.MovieID, Year: r.ReleaseYear, ReleaseDate: r.ReleaseDate}
	genres := r.Genres
	if genres == nil {
		genres = []string{}
	}
	return &Favorite{
		UserID:      userID,
		MovieID:     r.MovieID,
		Title:       strings.TrimSpace(r.Title),
		PosterPath:  r.PosterPath,
		ReleaseYear: m.ReleaseYear(),
		Genres:      genres,
		VoteAverage: r.VoteAverage,
	}
}

type FavoriteList struct {
	Favorites []*Favorite `json:"favorites"`
	Total     int         `json:"total"`
}

type FavoriteRepository interface {
	// Add inserts the favorite; adding a movie twice returns the existing row.
	Add(ctx context.Context, fav *Favorite) (*Favorite, error)
	Remove(ctx context.Context, userID string, movieID int) error
	Exists(ctx context.Context, userID string, movieID int) (bool, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*Favorite, int, error)
	ListAll(ctx context.Context, userID string) ([]*Favorite, error)
}

type FavoriteService interface {
	List(ctx context.Context, userID string, limit, offset int) (*FavoriteList, error)
	Add(ctx context.Context, userID string, req AddFavoriteRequest) (*Favorite, error)
	Remove(ctx context.Context, userID string, movieID int) error
	IsFavorite(ctx context.Context, userID string, movieID int) (bool, error)
}
