package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opencensus.io/trace"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

type loreRepository struct {
	systemDB *sql.DB
	psql     sq.StatementBuilderType
}

// NewLoreRepository creates a new PostgreSQL repository for user_analyses
func NewLoreRepository(db *sql.DB) domain.LoreRepository {
	return &loreRepository{
		systemDB: db,
		psql:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *loreRepository) Create(ctx context.Context, analysis *domain.LoreAnalysis) error {
	ctx, span := tracing.StartServiceSpan(ctx, "LoreRepository", "Create")
	defer span.End()

	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	analysis.CreatedAt = time.Now().UTC()

	document, err := json.Marshal(analysis.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query, args, err := r.psql.Insert("user_analyses").
		Columns("id", "user_id", "movie_id", "movie_title", "analysis", "model", "tokens_used", "cost_usd", "cached", "created_at").
		Values(analysis.ID, analysis.UserID, analysis.MovieID, analysis.MovieTitle, document,
			analysis.Model, analysis.TokensUsed, analysis.CostUSD, analysis.Cached, analysis.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.systemDB.ExecContext(ctx, query, args...); err != nil {
		tracing.MarkSpanError(ctx, err)
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	span.AddAttributes(trace.StringAttribute("analysis.id", analysis.ID))
	return nil
}

func (r *loreRepository) GetByID(ctx context.Context, userID, id string) (*domain.LoreAnalysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.ErrNotFound{Entity: "analysis", ID: id}
	}

	query, args, err := r.psql.Select("id", "user_id", "movie_id", "movie_title", "analysis", "model", "tokens_used", "cost_usd", "cached", "created_at").
		From("user_analyses").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var analysis domain.LoreAnalysis
	var document []byte
	err = r.systemDB.QueryRowContext(ctx, query, args...).Scan(
		&analysis.ID,
		&analysis.UserID,
		&analysis.MovieID,
		&analysis.MovieTitle,
		&document,
		&analysis.Model,
		&analysis.TokensUsed,
		&analysis.CostUSD,
		&analysis.Cached,
		&analysis.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "analysis", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	analysis.Analysis = &domain.LoreDocument{}
	if err := json.Unmarshal(document, analysis.Analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &analysis, nil
}

func (r *loreRepository) List(ctx context.Context, userID string, limit, offset int) ([]*domain.LoreAnalysisSummary, int, error) {
	var total int
	err := r.systemDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_analyses WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	query, args, err := r.psql.Select(
		"id", "movie_id", "movie_title",
		"COALESCE(jsonb_array_length(analysis->'required_movies'), 0)",
		"cached", "created_at",
	).
		From("user_analyses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.systemDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	summaries := []*domain.LoreAnalysisSummary{}
	for rows.Next() {
		var s domain.LoreAnalysisSummary
		if err := rows.Scan(&s.ID, &s.MovieID, &s.MovieTitle, &s.RequiredMovieCount, &s.Cached, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan analysis: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating analyses: %w", err)
	}
	return summaries, total, nil
}

func (r *loreRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &domain.ErrNotFound{Entity: "analysis", ID: id}
	}

	result, err := r.systemDB.ExecContext(ctx,
		`DELETE FROM user_analyses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "analysis", ID: id}
	}
	return nil
}
