package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/domain/mocks"
)

func TestPlanService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockPlanRepository(ctrl)
	svc := NewPlanService(repo, setupMockLogger(ctrl))

	repo.EXPECT().List(gomock.Any()).Return(nil, nil)
	plans, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Empty(t, plans)

	repo.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection refused"))
	_, err = svc.List(context.Background())
	assert.EqualError(t, err, "failed to list plans: connection refused")
}

func TestPlanService_SeedDefaults(t *testing.T) {
	t.Run("upserts every plan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockPlanRepository(ctrl)
		svc := NewPlanService(repo, setupMockLogger(ctrl))

		var seeded []string
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *domain.Plan) error {
			seeded = append(seeded, p.Slug)
			return nil
		}).Times(3)

		plans, err := svc.SeedDefaults(context.Background())
		require.NoError(t, err)
		assert.Len(t, plans, 3)
		assert.Equal(t, []string{domain.PlanSlugFree, domain.PlanSlugPro, domain.PlanSlugPremium}, seeded)
	})

	t.Run("stops on the first failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockPlanRepository(ctrl)
		svc := NewPlanService(repo, setupMockLogger(ctrl))

		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("read-only transaction"))

		_, err := svc.SeedDefaults(context.Background())
		assert.EqualError(t, err, "failed to seed plan free: read-only transaction")
	})
}
