package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const providerEmail = "email"

type AuthBridgeConfig struct {
	Verifier    domain.FirebaseVerifier
	Identity    domain.IdentityProvider
	Users       domain.UserRepository
	Provisioner domain.AccountProvisioner
	Quota       domain.QuotaService
	Mailer      domain.WelcomeMailer // optional
	Logger      logger.Logger
}

// AuthBridgeService exchanges a Firebase ID token for a Supabase session and
// makes sure the account behind it is provisioned.
type AuthBridgeService struct {
	verifier    domain.FirebaseVerifier
	identity    domain.IdentityProvider
	users       domain.UserRepository
	provisioner domain.AccountProvisioner
	quota       domain.QuotaService
	mailer      domain.WelcomeMailer
	logger      logger.Logger
}

func NewAuthBridgeService(cfg AuthBridgeConfig) *AuthBridgeService {
	return &AuthBridgeService{
		verifier:    cfg.Verifier,
		identity:    cfg.Identity,
		users:       cfg.Users,
		provisioner: cfg.Provisioner,
		quota:       cfg.Quota,
		mailer:      cfg.Mailer,
		logger:      cfg.Logger,
	}
}

var _ domain.AuthBridgeService = (*AuthBridgeService)(nil)

func (s *AuthBridgeService) ExchangeFirebaseToken(ctx context.Context, req domain.FirebaseExchangeRequest) (*domain.FirebaseExchangeResponse, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "AuthBridgeService", "ExchangeFirebaseToken")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.verifier.Verify(ctx, req.FirebaseToken)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	if !strings.EqualFold(identity.Email, req.Email) {
		s.logger.WithField("firebase_uid", identity.UID).Warn("Firebase token email does not match the submitted email")
		return nil, &domain.ErrForbidden{Message: "email does not match the firebase token"}
	}
	if !identity.EmailVerified {
		s.logger.WithField("firebase_uid", identity.UID).Warn("Firebase account email is not verified")
		return nil, &domain.ErrForbidden{Message: "firebase account email is not verified"}
	}
	tracing.AddAttribute(ctx, "firebase_uid", identity.UID)

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = identity.Name
	}
	avatarURL := req.PhotoURL
	if avatarURL == "" {
		avatarURL = identity.Picture
	}

	authUser, err := s.identity.CreateUser(ctx, domain.CreateAuthUserParams{
		Email:        req.Email,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{
			"full_name":    displayName,
			"avatar_url":   avatarURL,
			"provider":     domain.ProviderFirebase,
			"firebase_uid": identity.UID,
		},
	})
	if errors.Is(err, domain.ErrAuthUserExists) {
		authUser, err = s.resolveExisting(ctx, req.Email)
	}
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to create auth user: %w", err)
	}

	user, created, err := s.mirror(ctx, &domain.User{
		ID:          authUser.ID,
		Email:       req.Email,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		Provider:    domain.ProviderFirebase,
		ProviderUID: identity.UID,
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	session, err := s.identity.CreateSession(ctx, req.Email)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"new_user": created,
	}).Info("Firebase token exchanged")

	return &domain.FirebaseExchangeResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User:         user,
		NewUser:      created,
	}, nil
}

// resolveExisting finds the auth user of an already registered email, first
// through the mirror row and then through the admin listing.
func (s *AuthBridgeService) resolveExisting(ctx context.Context, email string) (*domain.AuthUser, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return &domain.AuthUser{ID: user.ID, Email: user.Email}, nil
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	authUser, err := s.identity.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve existing auth user: %w", err)
	}
	return authUser, nil
}

// MirrorAuthUser handles users created directly in Supabase Auth.
func (s *AuthBridgeService) MirrorAuthUser(ctx context.Context, authUser domain.AuthUser) (*domain.User, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "AuthBridgeService", "MirrorAuthUser")
	defer span.End()

	if authUser.ID == "" {
		return nil, domain.NewValidationError("user id is required")
	}
	if strings.TrimSpace(authUser.Email) == "" {
		return nil, domain.NewValidationError("email is required")
	}

	provider := metadataString(authUser.UserMetadata, "provider")
	if provider == "" {
		provider = providerEmail
	}
	displayName := metadataString(authUser.UserMetadata, "full_name")
	if displayName == "" {
		displayName = metadataString(authUser.UserMetadata, "name")
	}

	user, _, err := s.mirror(ctx, &domain.User{
		ID:          authUser.ID,
		Email:       strings.ToLower(strings.TrimSpace(authUser.Email)),
		DisplayName: displayName,
		AvatarURL:   metadataString(authUser.UserMetadata, "avatar_url"),
		Provider:    provider,
		ProviderUID: metadataString(authUser.UserMetadata, "firebase_uid"),
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return user, nil
}

// mirror upserts the public.users row, provisions the free account and sends
// the welcome email the first time.
func (s *AuthBridgeService) mirror(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	saved, err := s.users.UpsertByEmail(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mirror user: %w", err)
	}

	created, err := s.provisioner.ProvisionFreeAccount(ctx, saved.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to provision account: %w", err)
	}
	if created {
		s.sendWelcome(ctx, saved)
	}
	return saved, created, nil
}

func (s *AuthBridgeService) sendWelcome(ctx context.Context, user *domain.User) {
	if s.mailer == nil {
		return
	}

	plan := domain.FreePlan()
	if s.quota != nil {
		if _, p, err := s.quota.PlanFor(ctx, user.ID); err == nil && p != nil {
			plan = p
		}
	}

	if err := s.mailer.SendWelcome(ctx, user, plan); err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Warn("Failed to send welcome email")
	}
}

func metadataString(metadata map[string]interface{}, key string) string {
	if v, ok := metadata[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
