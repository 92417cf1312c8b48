package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentPeriod(t *testing.T) {
	start, end := CurrentPeriod(time.Date(2024, time.February, 15, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls into the next year
	start, end = CurrentPeriod(time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	// Local times are bucketed by their UTC instant
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	start, _ = CurrentPeriod(time.Date(2024, time.March, 1, 2, 0, 0, 0, plus5))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 3, Remaining(5, 2))
	assert.Equal(t, 0, Remaining(5, 5))
	assert.Equal(t, 0, Remaining(5, 9))
	assert.Equal(t, Unlimited, Remaining(Unlimited, 1000))
}

func TestUsage_Count(t *testing.T) {
	u := &Usage{AnalysesCount: 4, AudioCount: 1}
	assert.Equal(t, 4, u.Count(UsageKindAnalysis))
	assert.Equal(t, 1, u.Count(UsageKindAudio))
}

func TestMembership_IsCurrent(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	start, end := FreeMembershipWindow(now)
	assert.Equal(t, now.AddDate(1, 0, 0), end)

	m := &Membership{Status: MembershipStatusActive, CurrentPeriodStart: start, CurrentPeriodEnd: end}
	assert.True(t, m.IsCurrent(now))
	assert.False(t, m.IsCurrent(end))
	assert.False(t, m.IsCurrent(start.Add(-time.Second)))

	m.Status = MembershipStatusCancelled
	assert.False(t, m.IsCurrent(now))
}
