package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/database/schema"
	"github.com/CinePrep/cineprep/pkg/cache"
	"github.com/CinePrep/cineprep/pkg/logger"
)

func createTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "debug",
		Version:     "2.1",
		AppURL:      "http://localhost:5173",
		Server: config.ServerConfig{
			Host:               "localhost",
			Port:               3001,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			ShutdownTimeout:    5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "cineprep_test",
			SSLMode:  "disable",
		},
		Supabase: config.SupabaseConfig{
			URL:            "http://supabase.test",
			ServiceRoleKey: "service-role",
			JWTSecret:      "super-secret-jwt-token-with-at-least-32-characters",
		},
		Qwen: config.QwenConfig{
			Model:    "qwen-plus",
			TTSVoice: "Cherry",
			Timeout:  30 * time.Second,
		},
		Cache: config.CacheConfig{LoreTTL: time.Hour},
		Audio: config.AudioConfig{MaxNarrative: 580},
		RateLimit: config.RateLimitConfig{
			GenerationsPerMinute: 10,
		},
	}
}

// setupTestApp wires an app on a sqlmock database up to its handlers.
func setupTestApp(t *testing.T) (*App, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	a := NewApp(createTestConfig(),
		WithMockDB(db),
		WithCacheStore(cache.NewMemoryStore(0)),
		WithLogger(logger.NewTestLogger(t)),
	).(*App)

	require.NoError(t, a.InitClients())
	require.NoError(t, a.InitRepositories())
	require.NoError(t, a.InitServices())
	require.NoError(t, a.InitHandlers())

	t.Cleanup(func() {
		if a.limiter != nil {
			a.limiter.Stop()
		}
	})
	return a, mock
}

func TestNewApp(t *testing.T) {
	cfg := createTestConfig()
	a := NewApp(cfg).(*App)

	assert.Same(t, cfg, a.GetConfig())
	assert.NotNil(t, a.GetLogger())
	assert.NotNil(t, a.GetMetrics())
	assert.NotNil(t, a.GetMux())
	assert.NotNil(t, a.GetShutdownContext())
	assert.Equal(t, 5*time.Second, a.shutdownTimeout)
	assert.False(t, a.IsServerCreated())
}

func TestNewApp_DefaultShutdownTimeout(t *testing.T) {
	cfg := createTestConfig()
	cfg.Server.ShutdownTimeout = 0

	a := NewApp(cfg).(*App)
	assert.Equal(t, 60*time.Second, a.shutdownTimeout)

	a.SetShutdownTimeout(time.Second)
	assert.Equal(t, time.Second, a.shutdownTimeout)
}

func TestApp_InitOrder(t *testing.T) {
	a := NewApp(createTestConfig(), WithLogger(logger.NewTestLogger(t))).(*App)

	assert.EqualError(t, a.InitRepositories(), "database must be initialized before repositories")
	assert.EqualError(t, a.InitServices(), "repositories must be initialized before services")
	assert.EqualError(t, a.InitHandlers(), "services must be initialized before handlers")
	assert.Error(t, a.Start())
}

func TestApp_InitClients(t *testing.T) {
	a, _ := setupTestApp(t)

	assert.NotNil(t, a.cache)
	assert.NotNil(t, a.limiter)
	assert.NotNil(t, a.mailer)
	assert.NotNil(t, a.tokenVerifier)
	assert.NotNil(t, a.firebase)
	assert.Nil(t, a.audioStore)
	assert.False(t, a.llm.Configured())
}

func TestApp_Routes(t *testing.T) {
	a, mock := setupTestApp(t)
	handler := a.GetHandler()
	require.NotNil(t, handler)

	t.Run("health", func(t *testing.T) {
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"qwen_configured":false`)
		assert.Contains(t, rec.Body.String(), `"database":"connected"`)
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		for _, target := range []string{"/api/lore/history", "/api/favorites", "/api/user/me", "/api/settings", "/api/taste/profile"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/lore/generate", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("supabase hook disabled without secret", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/supabase/user-created", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("cors", func(t *testing.T) {
		mock.ExpectPing()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cineprep_http_request_duration_seconds")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_ShutdownWithoutServer(t *testing.T) {
	a, mock := setupTestApp(t)
	mock.ExpectClose()

	require.NoError(t, a.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())

	// New requests are refused once shutdown started
	rec := httptest.NewRecorder()
	a.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, int64(0), a.GetActiveRequestCount())
}

func TestApp_WaitForServerStart(t *testing.T) {
	a := NewApp(createTestConfig(), WithLogger(logger.NewTestLogger(t))).(*App)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, a.WaitForServerStart(ctx))
}

func TestApp_InitDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a := NewApp(createTestConfig(), WithMockDB(db), WithLogger(logger.NewTestLogger(t))).(*App)

	for range schema.TableDefinitions {
		mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery("SELECT value FROM settings WHERE key = 'db_version'").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("2"))
	mock.ExpectExec("INSERT INTO plans").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, a.InitDB())
	assert.Same(t, db, a.GetDB())
	assert.NoError(t, mock.ExpectationsWereMet())
}
