package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_usage_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain UsageRepository
//go:generate mockgen -destination mocks/mock_quota_service.go -package mocks github.com/CinePrep/cineprep/internal/domain QuotaService

type UsageKind string

const (
	UsageKindAnalysis UsageKind = "analyses"
	UsageKindAudio    UsageKind = "audio"
)

// Usage is one usage_tracking row: the counters of a user for a calendar month.
type Usage struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	AnalysesCount int       `json:"analyses_count"`
	AudioCount    int       `json:"audio_count"`
	TokensUsed    int64     `json:"tokens_used"`
	CostUSD       float64   `json:"cost_usd"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Count returns the counter matching kind.
func (u *Usage) Count(kind UsageKind) int {
	if kind == UsageKindAudio {
		return u.AudioCount
	}
	return u.AnalysesCount
}

// UsageDelta is added atomically to the current period row.
type UsageDelta struct {
	Analyses int
	Audio    int
	Tokens   int64
	CostUSD  float64
}

// CurrentPeriod returns the calendar month containing now, in UTC.
// period_end is the first instant of the next month.
func CurrentPeriod(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Remaining returns how many more units fit under limit, or Unlimited.
func Remaining(limit, used int) int {
	if limit == Unlimited {
		return Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

type UsageRepository interface {
	// GetOrCreate returns the row for the period, inserting it with
	// ON CONFLICT DO NOTHING when missing.
	GetOrCreate(ctx context.Context, userID string, periodStart, periodEnd time.Time) (*Usage, error)

	// Increment adds delta to the counters of the period row.
	Increment(ctx context.Context, userID string, periodStart, periodEnd time.Time, delta UsageDelta) error
}

// QuotaService enforces plan ceilings and records consumption.
type QuotaService interface {
	// Check returns ErrQuotaExceeded when the current period counter of kind
	// has reached the plan ceiling.
	Check(ctx context.Context, userID string, kind UsageKind) (*Plan, *Usage, error)
	// PlanFor returns the current membership (nil on the free fallback) and its plan.
	PlanFor(ctx context.Context, userID string) (*Membership, *Plan, error)
	Record(ctx context.Context, userID string, delta UsageDelta) error
	Summary(ctx context.Context, userID string) (*UsageSummary, error)
}
