package supabase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/cache"
)

const userLookupTTL = time.Minute

type userLookup interface {
	GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error)
}

type accessTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier validates Supabase access tokens locally with the project JWT
// secret. Without a secret it asks GoTrue (/auth/v1/user) and caches the answer
// for a minute per token.
type TokenVerifier struct {
	secret []byte
	lookup userLookup
	cache  cache.Store
}

func NewTokenVerifier(jwtSecret string, lookup userLookup, store cache.Store) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(jwtSecret),
		lookup: lookup,
		cache:  store,
	}
}

var _ domain.AccessTokenVerifier = (*TokenVerifier)(nil)

func (v *TokenVerifier) VerifyAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error) {
	if token == "" {
		return nil, &domain.ErrUnauthorized{Message: "missing access token"}
	}
	if len(v.secret) > 0 {
		return v.verifyLocally(token)
	}
	return v.verifyRemotely(ctx, token)
}

func (v *TokenVerifier) verifyLocally(token string) (*domain.AccessClaims, error) {
	claims := &accessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.ErrUnauthorized{Message: "access token expired"}
		}
		return nil, &domain.ErrUnauthorized{Message: "invalid access token"}
	}
	if claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "access token has no subject"}
	}
	return &domain.AccessClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

func (v *TokenVerifier) verifyRemotely(ctx context.Context, token string) (*domain.AccessClaims, error) {
	if v.lookup == nil {
		return nil, &domain.ErrUnauthorized{Message: "access token verification is not configured"}
	}

	sum := sha256.Sum256([]byte(token))
	key := "auth:" + hex.EncodeToString(sum[:])

	if v.cache != nil {
		if data, found, err := v.cache.Get(ctx, key); err == nil && found {
			var claims domain.AccessClaims
			if json.Unmarshal(data, &claims) == nil {
				return &claims, nil
			}
		}
	}

	user, err := v.lookup.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	claims := &domain.AccessClaims{UserID: user.ID, Email: user.Email, Role: "authenticated"}

	if v.cache != nil {
		if data, err := json.Marshal(claims); err == nil {
			_ = v.cache.Set(ctx, key, data, userLookupTTL)
		}
	}
	return claims, nil
}
