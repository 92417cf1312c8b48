// Package firebase verifies Firebase Authentication ID tokens against
// Google's published signing certificates.
package firebase

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CinePrep/cineprep/internal/domain"
)

const (
	// DefaultCertsURL serves the x509 certificates that sign Firebase ID tokens.
	DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	defaultCertsTTL = time.Hour
	issuerPrefix    = "https://securetoken.google.com/"
)

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Verifier implements domain.FirebaseVerifier. Certificates are fetched
// lazily and kept for the max-age announced by Google.
type Verifier struct {
	projectID  string
	certsURL   string
	httpClient domain.HTTPClient
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

type Option func(*Verifier)

// WithCertsURL overrides the certificate endpoint.
func WithCertsURL(url string) Option {
	return func(v *Verifier) { v.certsURL = url }
}

// WithClock overrides the time source used for token and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(projectID string, httpClient domain.HTTPClient, opts ...Option) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	v := &Verifier{
		projectID:  projectID,
		certsURL:   DefaultCertsURL,
		httpClient: httpClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ domain.FirebaseVerifier = (*Verifier)(nil)

func unauthorized(msg string) error {
	return &domain.ErrUnauthorized{Message: msg}
}

// Verify checks signature, audience, issuer, expiry and subject of idToken.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*domain.FirebaseIdentity, error) {
	if v.projectID == "" {
		return nil, unauthorized("firebase verification is not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, unauthorized("missing firebase token")
	}

	var keyErr error
	claims := &idTokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	token, err := parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		key, err := v.publicKey(ctx, kid)
		if err != nil {
			keyErr = err
			return nil, err
		}
		return key, nil
	})
	if keyErr != nil {
		var upstream *domain.ErrUpstream
		if errors.As(keyErr, &upstream) {
			return nil, keyErr
		}
	}
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized("firebase token expired")
		}
		return nil, unauthorized("invalid firebase token")
	}

	if claims.Subject == "" || len(claims.Subject) > 128 {
		return nil, unauthorized("invalid firebase token subject")
	}
	if claims.IssuedAt == nil || claims.IssuedAt.After(v.now()) {
		return nil, unauthorized("invalid firebase token issue time")
	}

	return &domain.FirebaseIdentity{
		UID:           claims.Subject,
		Email:         strings.ToLower(claims.Email),
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func (v *Verifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Before(v.expiresAt)
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	// An unknown kid on a fresh cache means Google rotated keys.
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (v *Verifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create certificates request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return &domain.ErrUpstream{Service: "firebase", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ErrUpstream{Service: "firebase", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.ErrUpstream{Service: "firebase", StatusCode: resp.StatusCode, Err: errors.New("failed to fetch signing certificates")}
	}

	keys, err := parseCertificates(body)
	if err != nil {
		return &domain.ErrUpstream{Service: "firebase", Err: err}
	}

	v.mu.Lock()
	v.keys = keys
	v.expiresAt = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	v.mu.Unlock()
	return nil
}

func parseCertificates(body []byte) (map[string]*rsa.PublicKey, error) {
	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("failed to decode certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		block, _ := pem.Decode([]byte(certPEM))
		if block == nil {
			return nil, fmt.Errorf("certificate %q is not PEM encoded", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate %q: %w", kid, err)
		}
		key, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("certificate %q does not hold an RSA key", kid)
		}
		keys[kid] = key
	}
	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultCertsTTL
}
