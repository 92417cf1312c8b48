package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/CinePrep/cineprep/internal/domain"
)

type tasteRepository struct {
	systemDB *sql.DB
	psql     sq.StatementBuilderType
}

// NewTasteRepository creates a new PostgreSQL repository for taste profiles and recommendations
func NewTasteRepository(db *sql.DB) domain.TasteRepository {
	return &tasteRepository{
		systemDB: db,
		psql:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *tasteRepository) GetProfile(ctx context.Context, userID string) (*domain.TasteProfile, error) {
	var profile domain.TasteProfile
	err := r.systemDB.QueryRowContext(ctx, `
		SELECT user_id, genre_weights, decade_weights, average_rating, favorites_count, updated_at
		FROM taste_profiles
		WHERE user_id = $1
	`, userID).Scan(
		&profile.UserID,
		&profile.GenreWeights,
		&profile.DecadeWeights,
		&profile.AverageRating,
		&profile.FavoritesCount,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "taste profile", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get taste profile: %w", err)
	}
	return &profile, nil
}

func (r *tasteRepository) SaveProfile(ctx context.Context, profile *domain.TasteProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	_, err := r.systemDB.ExecContext(ctx, `
		INSERT INTO taste_profiles (user_id, genre_weights, decade_weights, average_rating, favorites_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			genre_weights = EXCLUDED.genre_weights,
			decade_weights = EXCLUDED.decade_weights,
			average_rating = EXCLUDED.average_rating,
			favorites_count = EXCLUDED.favorites_count,
			updated_at = EXCLUDED.updated_at
	`,
		profile.UserID,
		profile.GenreWeights,
		profile.DecadeWeights,
		profile.AverageRating,
		profile.FavoritesCount,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save taste profile: %w", err)
	}
	return nil
}

func (r *tasteRepository) ReplaceRecommendations(ctx context.Context, userID string, recs []*domain.Recommendation) error {
	tx, err := r.systemDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear recommendations: %w", err)
	}

	if len(recs) > 0 {
		now := time.Now().UTC()
		insert := r.psql.Insert("recommendations").
			Columns("id", "user_id", "movie_id", "title", "score", "reasons", "created_at")
		for _, rec := range recs {
			if rec.ID == "" {
				rec.ID = uuid.New().String()
			}
			rec.UserID = userID
			rec.CreatedAt = now
			reasons := rec.Reasons
			if reasons == nil {
				reasons = []string{}
			}
			insert = insert.Values(rec.ID, userID, rec.MovieID, rec.Title, rec.Score, pq.Array(reasons), now)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert recommendations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

func (r *tasteRepository) ListRecommendations(ctx context.Context, userID string, limit int) ([]*domain.Recommendation, error) {
	builder := r.psql.Select("id", "user_id", "movie_id", "title", "score", "reasons", "created_at").
		From("recommendations").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("score DESC", "movie_id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.systemDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	recs := []*domain.Recommendation{}
	for rows.Next() {
		var rec domain.Recommendation
		var reasons pq.StringArray
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.MovieID, &rec.Title, &rec.Score, &reasons, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.Reasons = []string(reasons)
		if rec.Reasons == nil {
			rec.Reasons = []string{}
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}
