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

type authBridgeMocks struct {
	verifier    *mocks.MockFirebaseVerifier
	identity    *mocks.MockIdentityProvider
	users       *mocks.MockUserRepository
	provisioner *mocks.MockAccountProvisioner
	quota       *mocks.MockQuotaService
	mailer      *mocks.MockWelcomeMailer
}

func newTestAuthBridge(ctrl *gomock.Controller) (*AuthBridgeService, authBridgeMocks) {
	m := authBridgeMocks{
		verifier:    mocks.NewMockFirebaseVerifier(ctrl),
		identity:    mocks.NewMockIdentityProvider(ctrl),
		users:       mocks.NewMockUserRepository(ctrl),
		provisioner: mocks.NewMockAccountProvisioner(ctrl),
		quota:       mocks.NewMockQuotaService(ctrl),
		mailer:      mocks.NewMockWelcomeMailer(ctrl),
	}
	svc := NewAuthBridgeService(AuthBridgeConfig{
		Verifier:    m.verifier,
		Identity:    m.identity,
		Users:       m.users,
		Provisioner: m.provisioner,
		Quota:       m.quota,
		Mailer:      m.mailer,
		Logger:      setupMockLogger(ctrl),
	})
	return svc, m
}

func exchangeRequest() domain.FirebaseExchangeRequest {
	return domain.FirebaseExchangeRequest{
		FirebaseToken: "firebase-id-token",
		Email:         "Ada@Example.com",
		DisplayName:   "Ada",
		PhotoURL:      "https://lh3.googleusercontent.com/a/ada.png",
	}
}

func testSession() *domain.AuthSession {
	return &domain.AuthSession{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600, TokenType: "bearer"}
}

func TestAuthBridgeService_ExchangeFirebaseToken(t *testing.T) {
	identity := &domain.FirebaseIdentity{UID: "fb-uid-1", Email: "ada@example.com", EmailVerified: true}

	t.Run("new user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), "firebase-id-token").Return(identity, nil)
		m.identity.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params domain.CreateAuthUserParams) (*domain.AuthUser, error) {
				assert.Equal(t, "ada@example.com", params.Email)
				assert.True(t, params.EmailConfirm)
				assert.Equal(t, "Ada", params.UserMetadata["full_name"])
				assert.Equal(t, domain.ProviderFirebase, params.UserMetadata["provider"])
				assert.Equal(t, "fb-uid-1", params.UserMetadata["firebase_uid"])
				return &domain.AuthUser{ID: "auth-1", Email: params.Email}, nil
			})
		m.users.EXPECT().UpsertByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *domain.User) (*domain.User, error) {
				assert.Equal(t, "auth-1", u.ID)
				assert.Equal(t, "fb-uid-1", u.ProviderUID)
				return u, nil
			})
		m.provisioner.EXPECT().ProvisionFreeAccount(gomock.Any(), "auth-1").Return(true, nil)
		m.quota.EXPECT().PlanFor(gomock.Any(), "auth-1").Return(nil, domain.FreePlan(), nil)
		m.mailer.EXPECT().SendWelcome(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
		m.identity.EXPECT().CreateSession(gomock.Any(), "ada@example.com").Return(testSession(), nil)

		resp, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		require.NoError(t, err)
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
		assert.Equal(t, 3600, resp.ExpiresIn)
		assert.True(t, resp.NewUser)
		assert.Equal(t, "auth-1", resp.User.ID)
	})

	t.Run("existing user resolved through the mirror", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(identity, nil)
		m.identity.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, domain.ErrAuthUserExists)
		m.users.EXPECT().GetUserByEmail(gomock.Any(), "ada@example.com").Return(&domain.User{ID: "auth-9", Email: "ada@example.com"}, nil)
		m.users.EXPECT().UpsertByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *domain.User) (*domain.User, error) {
				assert.Equal(t, "auth-9", u.ID)
				return u, nil
			})
		m.provisioner.EXPECT().ProvisionFreeAccount(gomock.Any(), "auth-9").Return(false, nil)
		m.identity.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(testSession(), nil)

		resp, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		require.NoError(t, err)
		assert.False(t, resp.NewUser)
	})

	t.Run("existing user resolved through the admin listing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(identity, nil)
		m.identity.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, domain.ErrAuthUserExists)
		m.users.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, &domain.ErrNotFound{Entity: "user", ID: "ada@example.com"})
		m.identity.EXPECT().FindUserByEmail(gomock.Any(), "ada@example.com").Return(&domain.AuthUser{ID: "auth-7", Email: "ada@example.com"}, nil)
		m.users.EXPECT().UpsertByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil })
		m.provisioner.EXPECT().ProvisionFreeAccount(gomock.Any(), "auth-7").Return(false, nil)
		m.identity.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(testSession(), nil)

		resp, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		require.NoError(t, err)
		assert.Equal(t, "auth-7", resp.User.ID)
	})

	t.Run("email mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(&domain.FirebaseIdentity{UID: "x", Email: "mallory@example.com"}, nil)

		_, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		var forbidden *domain.ErrForbidden
		assert.ErrorAs(t, err, &forbidden)
	})

	t.Run("unverified email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		unverified := &domain.FirebaseIdentity{UID: "fb-uid-2", Email: "ada@example.com", EmailVerified: false}
		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(unverified, nil)
		m.identity.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)
		m.identity.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Times(0)

		resp, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		assert.Nil(t, resp)
		var forbidden *domain.ErrForbidden
		require.ErrorAs(t, err, &forbidden)
		assert.Equal(t, "firebase account email is not verified", forbidden.Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil, &domain.ErrUnauthorized{Message: "invalid firebase token"})

		_, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		var unauthorized *domain.ErrUnauthorized
		assert.ErrorAs(t, err, &unauthorized)
	})

	t.Run("validation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _ := newTestAuthBridge(ctrl)

		_, err := svc.ExchangeFirebaseToken(context.Background(), domain.FirebaseExchangeRequest{Email: "ada@example.com"})
		var validationErr domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("provisioning failure aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newTestAuthBridge(ctrl)

		m.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(identity, nil)
		m.identity.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(&domain.AuthUser{ID: "auth-1"}, nil)
		m.users.EXPECT().UpsertByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *domain.User) (*domain.User, error) { return u, nil })
		m.provisioner.EXPECT().ProvisionFreeAccount(gomock.Any(), gomock.Any()).Return(false, errors.New("deadlock detected"))

		_, err := svc.ExchangeFirebaseToken(context.Background(), exchangeRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to provision account")
	})
}

func TestAuthBridgeService_MirrorAuthUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newTestAuthBridge(ctrl)

	m.users.EXPECT().UpsertByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) (*domain.User, error) {
			assert.Equal(t, "supa-1", u.ID)
			assert.Equal(t, "grace@example.com", u.Email)
			assert.Equal(t, "Grace Hopper", u.DisplayName)
			assert.Equal(t, "email", u.Provider)
			return u, nil
		})
	m.provisioner.EXPECT().ProvisionFreeAccount(gomock.Any(), "supa-1").Return(true, nil)
	m.quota.EXPECT().PlanFor(gomock.Any(), "supa-1").Return(nil, nil, errors.New("unavailable"))
	m.mailer.EXPECT().SendWelcome(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.User, plan *domain.Plan) error {
			assert.Equal(t, domain.PlanSlugFree, plan.Slug)
			return nil
		})

	user, err := svc.MirrorAuthUser(context.Background(), domain.AuthUser{
		ID:           "supa-1",
		Email:        " Grace@Example.com",
		UserMetadata: map[string]interface{}{"name": "Grace Hopper"},
	})
	require.NoError(t, err)
	assert.Equal(t, "supa-1", user.ID)

	_, err = svc.MirrorAuthUser(context.Background(), domain.AuthUser{Email: "x@example.com"})
	assert.Error(t, err)
}
