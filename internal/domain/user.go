package domain

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain UserRepository
//go:generate mockgen -destination mocks/mock_user_service.go -package mocks github.com/CinePrep/cineprep/internal/domain UserServiceInterface
//go:generate mockgen -destination mocks/mock_welcome_mailer.go -package mocks github.com/CinePrep/cineprep/internal/domain WelcomeMailer

const ProviderFirebase = "firebase"

// User mirrors an auth.users row in public.users. The id is issued by Supabase Auth.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Provider    string     `json:"provider"`
	ProviderUID string     `json:"provider_uid,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("user id is required")
	}
	if !govalidator.IsEmail(u.Email) {
		return NewValidationError("invalid email address")
	}
	if u.AvatarURL != "" && !govalidator.IsURL(u.AvatarURL) {
		return NewValidationError("avatar_url must be a valid URL")
	}
	return nil
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.DisplayName == nil && r.AvatarURL == nil {
		return NewValidationError("nothing to update")
	}
	if r.DisplayName != nil {
		name := strings.TrimSpace(*r.DisplayName)
		if name == "" {
			return NewValidationError("display_name cannot be empty")
		}
		if len(name) > 100 {
			return NewValidationError("display_name must be at most 100 characters")
		}
		r.DisplayName = &name
	}
	if r.AvatarURL != nil && *r.AvatarURL != "" && !govalidator.IsURL(*r.AvatarURL) {
		return NewValidationError("avatar_url must be a valid URL")
	}
	return nil
}

// AccountOverview is the payload of GET /api/user/me.
type AccountOverview struct {
	User        *User        `json:"user"`
	Membership  *Membership  `json:"membership,omitempty"`
	Plan        *Plan        `json:"plan,omitempty"`
	Usage       *Usage       `json:"usage,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// UsageSummary is the payload of GET /api/user/usage.
type UsageSummary struct {
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	AnalysesUsed      int       `json:"analyses_used"`
	AnalysesLimit     int       `json:"analyses_limit"`
	AnalysesRemaining int       `json:"analyses_remaining"`
	AudioUsed         int       `json:"audio_used"`
	AudioLimit        int       `json:"audio_limit"`
	AudioRemaining    int       `json:"audio_remaining"`
	TokensUsed        int64     `json:"tokens_used"`
	EstimatedCostUSD  float64   `json:"estimated_cost_usd"`
	PlanSlug          string    `json:"plan"`
}

type UserServiceInterface interface {
	GetOverview(ctx context.Context, userID string) (*AccountOverview, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error)
	GetUsage(ctx context.Context, userID string) (*UsageSummary, error)
}

type UserRepository interface {
	// UpsertByEmail inserts the user or refreshes profile fields of the row with the same email.
	// The returned user carries the persisted id.
	UpsertByEmail(ctx context.Context, user *User) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)

	GetUserByEmail(ctx context.Context, email string) (*User, error)

	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)
}

// WelcomeMailer notifies a user after their first sign-in.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, user *User, plan *Plan) error
}
