package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/domain/mocks"
	"github.com/CinePrep/cineprep/pkg/logger"
)

func generateHookSecret(t *testing.T) string {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return "v1,whsec_" + base64.StdEncoding.EncodeToString(raw)
}

func signedHookRequest(t *testing.T, secret string, payload []byte) *http.Request {
	wh, err := svix.NewWebhook(hookSecret(secret))
	require.NoError(t, err)

	now := time.Now()
	signature, err := wh.Sign("msg_1", now, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/supabase/user-created", bytes.NewReader(payload))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", signature)
	return req
}

func TestSupabaseWebhookHandler(t *testing.T) {
	payload := []byte(`{"user":{"id":"auth-1","email":"ada@example.com","user_metadata":{"full_name":"Ada"}}}`)

	setup := func(t *testing.T) (*mocks.MockAuthBridgeService, *http.ServeMux, string) {
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)
		bridge := mocks.NewMockAuthBridgeService(ctrl)
		secret := generateHookSecret(t)
		mux := http.NewServeMux()
		NewSupabaseWebhookHandler(bridge, secret, logger.NewTestLogger(t)).RegisterRoutes(mux)
		return bridge, mux, secret
	}

	t.Run("mirrors the user", func(t *testing.T) {
		bridge, mux, secret := setup(t)
		bridge.EXPECT().MirrorAuthUser(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, user domain.AuthUser) (*domain.User, error) {
				assert.Equal(t, "auth-1", user.ID)
				assert.Equal(t, "ada@example.com", user.Email)
				assert.Equal(t, "Ada", user.UserMetadata["full_name"])
				return &domain.User{ID: "auth-1"}, nil
			})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedHookRequest(t, secret, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{}`, rec.Body.String())
	})

	t.Run("mirror failure still succeeds", func(t *testing.T) {
		bridge, mux, secret := setup(t)
		bridge.EXPECT().MirrorAuthUser(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedHookRequest(t, secret, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid signature", func(t *testing.T) {
		_, mux, _ := setup(t)
		req := signedHookRequest(t, generateHookSecret(t), payload)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing user", func(t *testing.T) {
		_, mux, secret := setup(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedHookRequest(t, secret, []byte(`{"event":"signup"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled without secret", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mux := http.NewServeMux()
		NewSupabaseWebhookHandler(mocks.NewMockAuthBridgeService(ctrl), "", logger.NewTestLogger(t)).RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/supabase/user-created", bytes.NewReader(payload)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHookSecret(t *testing.T) {
	assert.Equal(t, "whsec_abc", hookSecret("v1,whsec_abc"))
	assert.Equal(t, "whsec_abc", hookSecret("whsec_abc"))
}
