package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_plan_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain PlanRepository
//go:generate mockgen -destination mocks/mock_plan_service.go -package mocks github.com/CinePrep/cineprep/internal/domain PlanService

const (
	PlanSlugFree    = "free"
	PlanSlugPro     = "pro"
	PlanSlugPremium = "premium"

	// Unlimited is stored in quota columns for plans without a ceiling.
	Unlimited = -1
)

// PlanFeatures is stored as JSONB on plans.features.
type PlanFeatures struct {
	Audio     bool `json:"audio"`
	History   bool `json:"history"`
	Favorites bool `json:"favorites"`
	Priority  bool `json:"priority"`
}

func (f PlanFeatures) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *PlanFeatures) Scan(value interface{}) error {
	if value == nil {
		*f = PlanFeatures{}
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

	return json.Unmarshal(data, f)
}

type Plan struct {
	ID                       string       `json:"id"`
	Slug                     string       `json:"slug"`
	Name                     string       `json:"name"`
	PriceMonthly             int          `json:"price_monthly"`
	MaxAnalysesPerMonth      int          `json:"max_analyses_per_month"`
	MaxAudioGenerationsMonth int          `json:"max_audio_generations_per_month"`
	Features                 PlanFeatures `json:"features"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
}

func (p *Plan) Validate() error {
	if p.Slug == "" {
		return NewValidationError("plan slug is required")
	}
	if p.Name == "" {
		return NewValidationError("plan name is required")
	}
	if p.PriceMonthly < 0 {
		return NewValidationError("price_monthly cannot be negative")
	}
	if p.MaxAnalysesPerMonth < Unlimited || p.MaxAudioGenerationsMonth < Unlimited {
		return NewValidationError("quota must be -1 (unlimited) or a non-negative number")
	}
	return nil
}

// Limit returns the monthly ceiling of the plan for the given usage kind.
func (p *Plan) Limit(kind UsageKind) int {
	switch kind {
	case UsageKindAudio:
		return p.MaxAudioGenerationsMonth
	default:
		return p.MaxAnalysesPerMonth
	}
}

// FreePlan returns the hardcoded free tier used when the plans table has no
// free row yet.
func FreePlan() *Plan {
	return &Plan{
		Slug:                     PlanSlugFree,
		Name:                     "Free",
		PriceMonthly:             0,
		MaxAnalysesPerMonth:      5,
		MaxAudioGenerationsMonth: 3,
		Features:                 PlanFeatures{Audio: true, History: true, Favorites: true},
	}
}

// DefaultPaidPlans are the plans seeded by the operator CLI.
func DefaultPaidPlans() []*Plan {
	return []*Plan{
		{
			Slug:                     PlanSlugPro,
			Name:                     "Pro",
			PriceMonthly:             499,
			MaxAnalysesPerMonth:      50,
			MaxAudioGenerationsMonth: 30,
			Features:                 PlanFeatures{Audio: true, History: true, Favorites: true},
		},
		{
			Slug:                     PlanSlugPremium,
			Name:                     "Premium",
			PriceMonthly:             999,
			MaxAnalysesPerMonth:      Unlimited,
			MaxAudioGenerationsMonth: Unlimited,
			Features:                 PlanFeatures{Audio: true, History: true, Favorites: true, Priority: true},
		},
	}
}

type PlanRepository interface {
	List(ctx context.Context) ([]*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	// Upsert inserts the plan or updates the row with the same slug.
	Upsert(ctx context.Context, plan *Plan) error
}

type PlanService interface {
	List(ctx context.Context) ([]*Plan, error)
	// SeedDefaults upserts the free and paid plans.
	SeedDefaults(ctx context.Context) ([]*Plan, error)
}
