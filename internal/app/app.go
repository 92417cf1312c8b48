package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/database"
	"github.com/CinePrep/cineprep/internal/domain"
	httpHandler "github.com/CinePrep/cineprep/internal/http"
	"github.com/CinePrep/cineprep/internal/http/middleware"
	"github.com/CinePrep/cineprep/internal/migrations"
	"github.com/CinePrep/cineprep/internal/repository"
	"github.com/CinePrep/cineprep/internal/service"
	"github.com/CinePrep/cineprep/pkg/audiostore"
	"github.com/CinePrep/cineprep/pkg/cache"
	"github.com/CinePrep/cineprep/pkg/firebase"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/mailer"
	"github.com/CinePrep/cineprep/pkg/metrics"
	"github.com/CinePrep/cineprep/pkg/ratelimiter"
	"github.com/CinePrep/cineprep/pkg/supabase"
	"github.com/CinePrep/cineprep/pkg/tracing"
)

const (
	// authExchangesPerMinute bounds Firebase token exchanges per client IP.
	authExchangesPerMinute = 20
	cacheKeyPrefix         = "cineprep:"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetHandler() http.Handler
	GetDB() *sql.DB
	GetMetrics() *metrics.Metrics

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitDB() error
	InitClients() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config  *config.Config
	logger  logger.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	// Clients
	cache         cache.Store
	limiter       *ratelimiter.RateLimiter
	mailer        mailer.Mailer
	llm           *service.QwenClient
	tts           *service.QwenTTSClient
	identity      *supabase.Client
	tokenVerifier domain.AccessTokenVerifier
	firebase      domain.FirebaseVerifier
	audioStore    domain.AudioStore

	// Repositories
	userRepo        domain.UserRepository
	planRepo        domain.PlanRepository
	membershipRepo  domain.MembershipRepository
	usageRepo       domain.UsageRepository
	preferencesRepo domain.PreferencesRepository
	loreRepo        domain.LoreRepository
	favoriteRepo    domain.FavoriteRepository
	tasteRepo       domain.TasteRepository
	provisioner     domain.AccountProvisioner

	// Services
	quotaService    *service.QuotaService
	loreService     *service.LoreService
	audioService    *service.AudioService
	favoriteService *service.FavoriteService
	tasteService    *service.TasteService
	userService     *service.UserService
	settingsService *service.SettingsService
	planService     *service.PlanService
	authBridge      *service.AuthBridgeService

	// HTTP handlers
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithMockMailer configures the app to use a mock mailer
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithCacheStore replaces the lore and token cache
func WithCacheStore(store cache.Store) AppOption {
	return func(a *App) {
		a.cache = store
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 60 * time.Second
	}

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		metrics:         metrics.New(),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: shutdownTimeout,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing. The prometheus view exporter
// shares the registry served on /metrics.
func (a *App) InitTracing() error {
	err := tracing.Init(tracing.Options{
		Config:      &a.config.Tracing,
		Environment: a.config.Environment,
		Registry:    a.metrics.Registry(),
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return nil
}

// InitDB connects to Postgres, creates the tables, runs the migrations and
// seeds the free plan.
func (a *App) InitDB() error {
	if a.db == nil {
		dbCfg := a.config.Database
		a.logger.WithFields(map[string]interface{}{
			"host":     dbCfg.Host,
			"port":     dbCfg.Port,
			"user":     dbCfg.User,
			"dbname":   dbCfg.DBName,
			"sslmode":  dbCfg.SSLMode,
			"password": database.MaskedPassword(dbCfg.Password),
		}).Info("Connecting to database")

		db, err := database.Open(&a.config.Database, a.config.Tracing.Enabled)
		if err != nil {
			return err
		}
		a.db = db
	}

	if err := database.InitializeDatabase(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	ctx := context.Background()
	if err := migrations.NewManager(a.logger).RunMigrations(ctx, a.config, a.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.EnsureFreePlan(ctx, a.db); err != nil {
		return err
	}
	return nil
}

// InitClients builds the cache, the rate limiter, the mailer and the clients
// of the upstream services.
func (a *App) InitClients() error {
	ctx := context.Background()

	if a.cache == nil {
		if a.config.Cache.RedisURL != "" {
			store, err := cache.NewRedisStore(ctx, a.config.Cache.RedisURL, cacheKeyPrefix)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			a.cache = store
			a.logger.Info("Using Redis cache")
		} else {
			a.cache = cache.NewMemoryStore(5 * time.Minute)
			a.logger.Info("REDIS_URL not set, using in-memory cache")
		}
	}

	a.limiter = ratelimiter.NewRateLimiter()
	perMinute := a.config.RateLimit.GenerationsPerMinute
	a.limiter.SetPolicy(ratelimiter.NamespaceLoreGenerate, perMinute, time.Minute)
	a.limiter.SetPolicy(ratelimiter.NamespaceAudioGenerate, perMinute, time.Minute)
	a.limiter.SetPolicy(ratelimiter.NamespaceAuthExchange, authExchangesPerMinute, time.Minute)

	qwenHTTP := tracing.WrapHTTPClient(&http.Client{Timeout: a.config.Qwen.Timeout})
	upstreamHTTP := tracing.WrapHTTPClient(&http.Client{Timeout: 15 * time.Second})

	a.llm = service.NewQwenClient(service.QwenClientConfig{
		APIKey:     a.config.Qwen.APIKey,
		BaseURL:    a.config.Qwen.BaseURL,
		Model:      a.config.Qwen.Model,
		HTTPClient: qwenHTTP,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
	a.tts = service.NewQwenTTSClient(service.QwenTTSConfig{
		APIKey:     a.config.Qwen.APIKey,
		URL:        a.config.Qwen.TTSURL,
		Model:      a.config.Qwen.TTSModel,
		Voice:      a.config.Qwen.TTSVoice,
		HTTPClient: qwenHTTP,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
	if !a.config.QwenConfigured() {
		a.logger.Warn("QWEN_API_KEY not set, lore and audio generation are disabled")
	}

	a.identity = supabase.NewClient(supabase.Config{
		URL:            a.config.Supabase.URL,
		ServiceRoleKey: a.config.Supabase.ServiceRoleKey,
		AnonKey:        a.config.Supabase.AnonKey,
	}, upstreamHTTP)
	a.tokenVerifier = supabase.NewTokenVerifier(a.config.Supabase.JWTSecret, a.identity, a.cache)
	if a.config.Supabase.JWTSecret == "" {
		a.logger.Info("SUPABASE_JWT_SECRET not set, access tokens are verified against Supabase Auth")
	}

	a.firebase = firebase.NewVerifier(a.config.Firebase.ProjectID, upstreamHTTP)
	if a.config.Firebase.ProjectID == "" {
		a.logger.Warn("FIREBASE_PROJECT_ID not set, Firebase token exchange will reject every token")
	}

	if a.config.Audio.S3Bucket != "" {
		store, err := audiostore.NewS3Store(audiostore.Config{
			Bucket:     a.config.Audio.S3Bucket,
			Region:     a.config.Audio.S3Region,
			Endpoint:   a.config.Audio.S3Endpoint,
			AccessKey:  a.config.Audio.S3AccessKey,
			SecretKey:  a.config.Audio.S3SecretKey,
			PresignTTL: a.config.Audio.PresignTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize audio store: %w", err)
		}
		a.audioStore = store
		a.logger.WithField("bucket", a.config.Audio.S3Bucket).Info("Audio is re-hosted on S3")
	}

	if a.mailer == nil {
		if a.config.SMTP.Enabled() {
			a.mailer = mailer.NewSMTPMailer(&mailer.Config{
				SMTPHost:     a.config.SMTP.Host,
				SMTPPort:     a.config.SMTP.Port,
				SMTPUsername: a.config.SMTP.Username,
				SMTPPassword: a.config.SMTP.Password,
				FromEmail:    a.config.SMTP.FromEmail,
				FromName:     a.config.SMTP.FromName,
				AppURL:       a.config.AppURL,
			})
			a.logger.Info("Using SMTP mailer")
		} else {
			a.mailer = mailer.NewLogMailer(a.config.AppURL, a.logger)
			a.logger.Info("SMTP not configured, welcome emails are logged")
		}
	}

	return nil
}

// InitRepositories initializes all repositories
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	a.userRepo = repository.NewUserRepository(a.db)
	a.planRepo = repository.NewPlanRepository(a.db)
	a.membershipRepo = repository.NewMembershipRepository(a.db)
	a.usageRepo = repository.NewUsageRepository(a.db)
	a.preferencesRepo = repository.NewPreferencesRepository(a.db)
	a.loreRepo = repository.NewLoreRepository(a.db)
	a.favoriteRepo = repository.NewFavoriteRepository(a.db)
	a.tasteRepo = repository.NewTasteRepository(a.db)
	a.provisioner = repository.NewAccountProvisioner(a.db)

	return nil
}

// InitServices initializes all services
func (a *App) InitServices() error {
	if a.userRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}
	if a.cache == nil || a.llm == nil {
		return fmt.Errorf("clients must be initialized before services")
	}

	a.quotaService = service.NewQuotaService(service.QuotaServiceConfig{
		Memberships: a.membershipRepo,
		Plans:       a.planRepo,
		Usage:       a.usageRepo,
		Logger:      a.logger,
	})

	a.loreService = service.NewLoreService(service.LoreServiceConfig{
		Repo:              a.loreRepo,
		LLM:               a.llm,
		Quota:             a.quotaService,
		Preferences:       a.preferencesRepo,
		Cache:             a.cache,
		CacheTTL:          a.config.Cache.LoreTTL,
		Model:             a.config.Qwen.Model,
		Temperature:       a.config.Qwen.Temperature,
		MaxTokens:         a.config.Qwen.MaxTokens,
		GenerationTimeout: 2 * a.config.Qwen.Timeout,
		Metrics:           a.metrics,
		Logger:            a.logger,
	})

	a.audioService = service.NewAudioService(service.AudioServiceConfig{
		TTS:          a.tts,
		Quota:        a.quotaService,
		Store:        a.audioStore,
		HTTPClient:   tracing.WrapHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		DefaultVoice: a.config.Qwen.TTSVoice,
		MaxChars:     a.config.Audio.MaxNarrative,
		Metrics:      a.metrics,
		Logger:       a.logger,
	})

	a.favoriteService = service.NewFavoriteService(a.favoriteRepo, a.logger)
	a.tasteService = service.NewTasteService(service.TasteServiceConfig{
		Favorites: a.favoriteRepo,
		Repo:      a.tasteRepo,
		Logger:    a.logger,
	})

	a.userService = service.NewUserService(service.UserServiceConfig{
		Repository:  a.userRepo,
		Quota:       a.quotaService,
		Preferences: a.preferencesRepo,
		Logger:      a.logger,
	})
	a.settingsService = service.NewSettingsService(a.preferencesRepo, a.logger)
	a.planService = service.NewPlanService(a.planRepo, a.logger)

	a.authBridge = service.NewAuthBridgeService(service.AuthBridgeConfig{
		Verifier:    a.firebase,
		Identity:    a.identity,
		Users:       a.userRepo,
		Provisioner: a.provisioner,
		Quota:       a.quotaService,
		Mailer:      a.mailer,
		Logger:      a.logger,
	})

	return nil
}

// InitHandlers registers the routes and builds the middleware chain
func (a *App) InitHandlers() error {
	if a.authBridge == nil {
		return fmt.Errorf("services must be initialized before handlers")
	}

	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	requireAuth := middleware.NewAuthMiddleware(a.tokenVerifier, a.logger).RequireAuth
	loreLimit := middleware.RateLimit(a.limiter, ratelimiter.NamespaceLoreGenerate)
	audioLimit := middleware.RateLimit(a.limiter, ratelimiter.NamespaceAudioGenerate)
	authLimit := middleware.RateLimit(a.limiter, ratelimiter.NamespaceAuthExchange)

	httpHandler.NewHealthHandler(a.db, a.config.QwenConfigured(), a.config.Version, a.metrics.Handler(), a.logger).RegisterRoutes(a.mux)
	httpHandler.NewPlanHandler(a.planService, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewAuthHandler(a.authBridge, authLimit, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewSupabaseWebhookHandler(a.authBridge, a.config.Supabase.HookSecret, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewLoreHandler(a.loreService, requireAuth, loreLimit, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewAudioHandler(a.audioService, requireAuth, audioLimit, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewFavoriteHandler(a.favoriteService, requireAuth, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewTasteHandler(a.tasteService, requireAuth, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewUserHandler(a.userService, requireAuth, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewSettingsHandler(a.settingsService, requireAuth, a.logger).RegisterRoutes(a.mux)

	// Metrics reads the matched pattern, so it wraps the mux directly
	var handler http.Handler = middleware.Metrics(a.metrics)(a.mux)
	handler = middleware.CORSMiddleware(a.config.Server.CORSAllowedOrigins)(handler)
	if a.config.Tracing.Enabled {
		handler = tracing.Middleware(handler)
	}
	a.handler = a.gracefulShutdownMiddleware(handler)

	return nil
}

// Start starts the HTTP server
func (a *App) Start() error {
	if a.handler == nil {
		return fmt.Errorf("handlers must be initialized before starting the server")
	}

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("environment", a.config.Environment).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	// Signal that the server has been created and is about to start
	close(serverStarted)

	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout.String()).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	// Lore generations can take most of a minute; let them finish
	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	var shutdownErr error
	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}
	return shutdownErr
}

// cleanupResources stops the limiter and closes the cache and the database
func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.limiter != nil {
		a.limiter.Stop()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Warn("Error closing cache")
		}
	}

	if a.db != nil {
		if a.config.Tracing.Enabled {
			if err := ocsql.RecordStats(a.db, 5*time.Second); err != nil {
				a.logger.WithField("error", err.Error()).Error("Failed to record final database stats for tracing")
			}
		}

		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created and initialized
// Returns true if the server started successfully, false if context expired
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		a.logger.Error("serverStarted channel is nil - server initialization error")
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting CinePrep API")

	steps := []func() error{
		a.InitTracing,
		a.InitDB,
		a.InitClients,
		a.InitRepositories,
		a.InitServices,
		a.InitHandlers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetHandler returns the mux wrapped in the middleware chain
func (a *App) GetHandler() http.Handler {
	return a.handler
}

// GetDB returns the app's database connection
func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetMetrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout.String()).Info("Shutdown timeout configured")
}

// GetShutdownContext returns the shutdown context for components that need to watch for shutdown
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and refuses new ones
// once shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
