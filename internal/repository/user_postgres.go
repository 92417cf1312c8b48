package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opencensus.io/trace"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const userColumns = `id, email, COALESCE(display_name, ''), COALESCE(avatar_url, ''), provider,
	COALESCE(provider_uid, ''), created_at, updated_at, last_login_at`

type userRepository struct {
	systemDB *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{systemDB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderUID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// UpsertByEmail keeps the id of an existing row: the mirror is keyed by email
// and the stored id is the one every other table references.
func (r *userRepository) UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserRepository", "UpsertByEmail")
	defer span.End()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Provider == "" {
		user.Provider = domain.ProviderFirebase
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now().UTC()

	query := `
		INSERT INTO users (id, email, display_name, avatar_url, provider, provider_uid, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)
		ON CONFLICT (email) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, users.display_name),
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			provider_uid = COALESCE(EXCLUDED.provider_uid, users.provider_uid),
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at
		RETURNING ` + userColumns

	saved, err := scanUser(r.systemDB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		nullString(user.DisplayName),
		nullString(user.AvatarURL),
		user.Provider,
		nullString(user.ProviderUID),
		now,
	))
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	span.AddAttributes(trace.StringAttribute("user.id", saved.ID))
	return saved, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserRepository", "GetUserByID")
	defer span.End()

	span.AddAttributes(trace.StringAttribute("user.id", id))

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.systemDB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		span.SetStatus(trace.Status{
			Code:    trace.StatusCodeNotFound,
			Message: "user not found",
		})
		return nil, &domain.ErrNotFound{Entity: "user", ID: id}
	}
	if err != nil {
		span.SetStatus(trace.Status{
			Code:    trace.StatusCodeUnknown,
			Message: fmt.Sprintf("failed to get user: %s", err.Error()),
		})
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.systemDB.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update("users").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns)

	if req.DisplayName != nil {
		builder = builder.Set("display_name", *req.DisplayName)
	}
	if req.AvatarURL != nil {
		builder = builder.Set("avatar_url", nullString(*req.AvatarURL))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	user, err := scanUser(r.systemDB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
