// Package supabase talks to the Supabase Auth (GoTrue) admin API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/CinePrep/cineprep/internal/domain"
)

const defaultPerPage = 1000

// Config holds the project endpoint and keys.
type Config struct {
	URL            string
	ServiceRoleKey string
	// AnonKey is sent as apikey on the public verify endpoint. Falls back to
	// the service role key.
	AnonKey string
	// PerPage bounds the admin user listing pages.
	PerPage int
}

// Client implements domain.IdentityProvider over the GoTrue REST API.
type Client struct {
	baseURL        string
	serviceRoleKey string
	anonKey        string
	perPage        int
	httpClient     domain.HTTPClient
}

func NewClient(cfg Config, httpClient domain.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	anonKey := cfg.AnonKey
	if anonKey == "" {
		anonKey = cfg.ServiceRoleKey
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		serviceRoleKey: cfg.ServiceRoleKey,
		anonKey:        anonKey,
		perPage:        perPage,
		httpClient:     httpClient,
	}
}

var _ domain.IdentityProvider = (*Client)(nil)

// apiError is the body GoTrue returns on failure. Older versions use msg,
// newer ones error_description or message.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("%s (%s)", e.message, e.code)
	}
	return e.message
}

func parseAPIError(status int, body []byte) *apiError {
	parsed := gjson.ParseBytes(body)
	message := ""
	for _, path := range []string{"msg", "message", "error_description", "error"} {
		if v := parsed.Get(path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			message = v.String()
			break
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &apiError{
		status:  status,
		code:    parsed.Get("error_code").String(),
		message: message,
	}
}

func (e *apiError) alreadyRegistered() bool {
	if e.code == "email_exists" || e.code == "user_already_exists" {
		return true
	}
	msg := strings.ToLower(e.message)
	return strings.Contains(msg, "already been registered") || strings.Contains(msg, "already registered")
}

func (c *Client) do(ctx context.Context, method, path, apiKey, bearer string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrUpstream{Service: "supabase", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) admin(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	return c.do(ctx, method, path, c.serviceRoleKey, c.serviceRoleKey, payload)
}

func decodeUser(raw gjson.Result) *domain.AuthUser {
	user := &domain.AuthUser{
		ID:    raw.Get("id").String(),
		Email: strings.ToLower(raw.Get("email").String()),
	}
	if meta, ok := raw.Get("user_metadata").Value().(map[string]interface{}); ok {
		user.UserMetadata = meta
	}
	return user
}

// CreateUser creates a confirmed auth user. An already registered email
// yields domain.ErrAuthUserExists.
func (c *Client) CreateUser(ctx context.Context, params domain.CreateAuthUserParams) (*domain.AuthUser, error) {
	payload := map[string]interface{}{
		"email":         params.Email,
		"email_confirm": params.EmailConfirm,
	}
	if len(params.UserMetadata) > 0 {
		payload["user_metadata"] = params.UserMetadata
	}

	body, err := c.admin(ctx, http.MethodPost, "/admin/users", payload)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok && apiErr.alreadyRegistered() {
			return nil, domain.ErrAuthUserExists
		}
		return nil, wrapAPIError(err)
	}

	user := decodeUser(gjson.ParseBytes(body))
	if user.ID == "" {
		return nil, &domain.ErrUpstream{Service: "supabase", Err: fmt.Errorf("create user response has no id")}
	}
	return user, nil
}

// FindUserByEmail pages through the admin listing until the email matches or a
// short page signals the end.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(c.perPage))

		body, err := c.admin(ctx, http.MethodGet, "/admin/users?"+query.Encode(), nil)
		if err != nil {
			return nil, wrapAPIError(err)
		}

		users := gjson.GetBytes(body, "users")
		if !users.IsArray() {
			// Some GoTrue versions return a bare array.
			users = gjson.ParseBytes(body)
		}

		count := 0
		var found *domain.AuthUser
		users.ForEach(func(_, value gjson.Result) bool {
			count++
			if strings.EqualFold(value.Get("email").String(), email) {
				found = decodeUser(value)
				return false
			}
			return true
		})
		if found != nil {
			return found, nil
		}
		if count < c.perPage {
			return nil, &domain.ErrNotFound{Entity: "auth user", ID: email}
		}
	}
}

// CreateSession generates a magic link for email and redeems its hashed token
// immediately, minting an access/refresh token pair without sending mail.
func (c *Client) CreateSession(ctx context.Context, email string) (*domain.AuthSession, error) {
	body, err := c.admin(ctx, http.MethodPost, "/admin/generate_link", map[string]string{
		"type":  "magiclink",
		"email": email,
	})
	if err != nil {
		return nil, wrapAPIError(err)
	}

	parsed := gjson.ParseBytes(body)
	tokenHash := parsed.Get("hashed_token").String()
	if tokenHash == "" {
		tokenHash = parsed.Get("properties.hashed_token").String()
	}
	if tokenHash == "" {
		return nil, &domain.ErrUpstream{Service: "supabase", Err: fmt.Errorf("generate_link response has no hashed_token")}
	}

	body, err = c.do(ctx, http.MethodPost, "/verify", c.anonKey, c.anonKey, map[string]string{
		"type":       "magiclink",
		"token_hash": tokenHash,
	})
	if err != nil {
		return nil, wrapAPIError(err)
	}

	parsed = gjson.ParseBytes(body)
	session := &domain.AuthSession{
		AccessToken:  parsed.Get("access_token").String(),
		RefreshToken: parsed.Get("refresh_token").String(),
		ExpiresIn:    int(parsed.Get("expires_in").Int()),
		TokenType:    parsed.Get("token_type").String(),
	}
	if u := parsed.Get("user"); u.Exists() {
		session.User = decodeUser(u)
	}
	if session.AccessToken == "" {
		return nil, &domain.ErrUpstream{Service: "supabase", Err: fmt.Errorf("verify response has no access_token")}
	}
	return session, nil
}

// GetUser resolves the user owning an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error) {
	body, err := c.do(ctx, http.MethodGet, "/user", c.anonKey, accessToken, nil)
	if err != nil {
		if apiErr, ok := err.(*apiError); ok && (apiErr.status == http.StatusUnauthorized || apiErr.status == http.StatusForbidden) {
			return nil, &domain.ErrUnauthorized{Message: "invalid or expired access token"}
		}
		return nil, wrapAPIError(err)
	}

	user := decodeUser(gjson.ParseBytes(body))
	if user.ID == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired access token"}
	}
	return user, nil
}

func wrapAPIError(err error) error {
	if apiErr, ok := err.(*apiError); ok {
		return &domain.ErrUpstream{Service: "supabase", StatusCode: apiErr.status, Err: apiErr}
	}
	return err
}
