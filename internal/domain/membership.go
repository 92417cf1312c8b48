package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_membership_repository.go -package mocks github.com/CinePrep/cineprep/internal/domain MembershipRepository

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusCancelled MembershipStatus = "cancelled"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusSuspended MembershipStatus = "suspended"
)

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Membership binds a user to a plan. At most one active membership exists per
// user, enforced by a partial unique index.
type Membership struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	PlanID             string           `json:"plan_id"`
	Status             MembershipStatus `json:"status"`
	BillingCycle       BillingCycle     `json:"billing_cycle"`
	CurrentPeriodStart time.Time        `json:"current_period_start"`
	CurrentPeriodEnd   time.Time        `json:"current_period_end"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IsCurrent reports whether the membership is active and its period covers now.
func (m *Membership) IsCurrent(now time.Time) bool {
	if m.Status != MembershipStatusActive {
		return false
	}
	return !now.Before(m.CurrentPeriodStart) && now.Before(m.CurrentPeriodEnd)
}

// FreeMembershipWindow is the one-year window granted at signup.
func FreeMembershipWindow(now time.Time) (time.Time, time.Time) {
	start := now.UTC()
	return start, start.AddDate(1, 0, 0)
}

type MembershipRepository interface {
	// GetActive returns the active membership of the user joined with its plan.
	GetActive(ctx context.Context, userID string) (*Membership, *Plan, error)
}
