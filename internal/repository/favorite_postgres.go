package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/CinePrep/cineprep/internal/domain"
)

var favoriteColumns = []string{
	"id", "user_id", "movie_id", "title", "COALESCE(poster_path, '')",
	"COALESCE(release_year, 0)", "genres", "vote_average", "created_at",
}

type favoriteRepository struct {
	systemDB *sql.DB
	psql     sq.StatementBuilderType
}

// NewFavoriteRepository creates a new PostgreSQL favorites repository
func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{
		systemDB: db,
		psql:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanFavorite(row rowScanner) (*domain.Favorite, error) {
	var fav domain.Favorite
	var genres pq.StringArray
	err := row.Scan(
		&fav.ID,
		&fav.UserID,
		&fav.MovieID,
		&fav.Title,
		&fav.PosterPath,
		&fav.ReleaseYear,
		&genres,
		&fav.VoteAverage,
		&fav.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	fav.Genres = []string(genres)
	if fav.Genres == nil {
		fav.Genres = []string{}
	}
	return &fav, nil
}

func (r *favoriteRepository) Add(ctx context.Context, fav *domain.Favorite) (*domain.Favorite, error) {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}
	fav.CreatedAt = time.Now().UTC()
	genres := fav.Genres
	if genres == nil {
		genres = []string{}
	}

	var releaseYear sql.NullInt64
	if fav.ReleaseYear > 0 {
		releaseYear = sql.NullInt64{Int64: int64(fav.ReleaseYear), Valid: true}
	}

	query, args, err := r.psql.Insert("favorites").
		Columns("id", "user_id", "movie_id", "title", "poster_path", "release_year", "genres", "vote_average", "created_at").
		Values(fav.ID, fav.UserID, fav.MovieID, fav.Title, nullString(fav.PosterPath), releaseYear, pq.Array(genres), fav.VoteAverage, fav.CreatedAt).
		Suffix("ON CONFLICT (user_id, movie_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.systemDB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		fav.Genres = genres
		return fav, nil
	}

	// Already favorited: return the stored row.
	existing, err := r.get(ctx, fav.UserID, fav.MovieID)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *favoriteRepository) get(ctx context.Context, userID string, movieID int) (*domain.Favorite, error) {
	query, args, err := r.psql.Select(favoriteColumns...).
		From("favorites").
		Where(sq.Eq{"user_id": userID, "movie_id": movieID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	fav, err := scanFavorite(r.systemDB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "favorite", ID: strconv.Itoa(movieID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	return fav, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID string, movieID int) error {
	result, err := r.systemDB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "favorite", ID: strconv.Itoa(movieID)}
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID string, movieID int) (bool, error) {
	var exists bool
	err := r.systemDB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND movie_id = $2)`,
		userID, movieID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

func (r *favoriteRepository) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Favorite, int, error) {
	var total int
	err := r.systemDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	builder := r.psql.Select(favoriteColumns...).
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	favorites, err := r.query(ctx, builder)
	if err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

func (r *favoriteRepository) ListAll(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	builder := r.psql.Select(favoriteColumns...).
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	return r.query(ctx, builder)
}

func (r *favoriteRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]*domain.Favorite, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.systemDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*domain.Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return favorites, nil
}
