package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_firebase_verifier.go -package mocks github.com/CinePrep/cineprep/internal/domain FirebaseVerifier
//go:generate mockgen -destination mocks/mock_identity_provider.go -package mocks github.com/CinePrep/cineprep/internal/domain IdentityProvider
//go:generate mockgen -destination mocks/mock_account_provisioner.go -package mocks github.com/CinePrep/cineprep/internal/domain AccountProvisioner
//go:generate mockgen -destination mocks/mock_auth_bridge_service.go -package mocks github.com/CinePrep/cineprep/internal/domain AuthBridgeService
//go:generate mockgen -destination mocks/mock_access_token_verifier.go -package mocks github.com/CinePrep/cineprep/internal/domain AccessTokenVerifier

// ErrAuthUserExists is returned by IdentityProvider.CreateUser when the email is already registered.
var ErrAuthUserExists = errors.New("a user with this email address has already been registered")

// FirebaseIdentity is the verified content of a Firebase ID token.
type FirebaseIdentity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type FirebaseVerifier interface {
	Verify(ctx context.Context, idToken string) (*FirebaseIdentity, error)
}

// AuthUser is a Supabase Auth (auth.users) account.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type CreateAuthUserParams struct {
	Email        string
	EmailConfirm bool
	UserMetadata map[string]interface{}
}

// AuthSession is a Supabase access/refresh token pair.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	TokenType    string    `json:"token_type"`
	User         *AuthUser `json:"user,omitempty"`
}

// IdentityProvider is the Supabase Auth admin surface used by the auth bridge.
type IdentityProvider interface {
	CreateUser(ctx context.Context, params CreateAuthUserParams) (*AuthUser, error)
	// FindUserByEmail scans the paginated admin listing. Returns ErrNotFound when absent.
	FindUserByEmail(ctx context.Context, email string) (*AuthUser, error)
	// CreateSession mints tokens for email by redeeming a magic-link OTP.
	CreateSession(ctx context.Context, email string) (*AuthSession, error)
}

// AccountProvisioner ensures the free plan, an active membership, the current
// usage row and default preferences exist for a user, atomically.
type AccountProvisioner interface {
	ProvisionFreeAccount(ctx context.Context, userID string) (created bool, err error)
}

// AccessClaims are the claims the API relies on from a Supabase access token.
type AccessClaims struct {
	UserID string
	Email  string
	Role   string
}

type AccessTokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*AccessClaims, error)
}

type FirebaseExchangeRequest struct {
	FirebaseToken string `json:"firebaseToken"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoURL"`
}

func (r *FirebaseExchangeRequest) Validate() error {
	if strings.TrimSpace(r.FirebaseToken) == "" {
		return NewValidationError("firebaseToken is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !govalidator.IsEmail(r.Email) {
		return NewValidationError("a valid email is required")
	}
	if r.PhotoURL != "" && !govalidator.IsURL(r.PhotoURL) {
		r.PhotoURL = ""
	}
	return nil
}

type FirebaseExchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
	NewUser      bool   `json:"new_user"`
}

type AuthBridgeService interface {
	ExchangeFirebaseToken(ctx context.Context, req FirebaseExchangeRequest) (*FirebaseExchangeResponse, error)
	// MirrorAuthUser mirrors a user created directly in Supabase Auth and provisions its free account.
	MirrorAuthUser(ctx context.Context, user AuthUser) (*User, error)
}
