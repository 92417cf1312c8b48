package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "2.1"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Supabase    SupabaseConfig
	Firebase    FirebaseConfig
	Qwen        QwenConfig
	Cache       CacheConfig
	Audio       AudioConfig
	RateLimit   RateLimitConfig
	SMTP        SMTPConfig
	Tracing     TracingConfig
	AppURL      string
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port               int
	Host               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	AnonKey        string
	JWTSecret      string
	// HookSecret verifies Supabase Auth hook deliveries ("v1,whsec_..." format).
	HookSecret string
}

type FirebaseConfig struct {
	ProjectID string
}

type QwenConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	TTSURL      string
	TTSModel    string
	TTSVoice    string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type CacheConfig struct {
	RedisURL string
	LoreTTL  time.Duration
}

type AudioConfig struct {
	S3Bucket     string
	S3Region     string
	S3Endpoint   string // S3-compatible endpoint, e.g. Supabase Storage or MinIO
	S3AccessKey  string // static credentials; the default AWS chain is used when empty
	S3SecretKey  string
	PresignTTL   time.Duration
	MaxNarrative int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Enabled reports whether welcome emails can be delivered.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.FromEmail != ""
}

type RateLimitConfig struct {
	GenerationsPerMinute int
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64

	// "jaeger", "stackdriver", "zipkin", "datadog", "xray", "none"
	TraceExporter string

	JaegerEndpoint       string
	ZipkinEndpoint       string
	StackdriverProjectID string
	DatadogAgentAddress  string
	DatadogAPIKey        string
	XRayRegion           string
	AgentEndpoint        string

	// "prometheus", "stackdriver", "datadog", "none" or a comma-separated list
	MetricsExporter string
}

type LoadOptions struct {
	EnvFile string // optional environment file, e.g. ".env" or ".env.test"
}

// Load reads configuration from .env (when present) and the environment.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 3001)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("SHUTDOWN_TIMEOUT", "60s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("QWEN_MODEL", "qwen-plus")
	v.SetDefault("QWEN_TTS_URL", "https://dashscope-intl.aliyuncs.com/api/v1/services/aigc/multimodal-generation/generation")
	v.SetDefault("QWEN_TTS_MODEL", "qwen-tts")
	v.SetDefault("QWEN_TTS_VOICE", "Cherry")
	v.SetDefault("QWEN_TEMPERATURE", 0.7)
	v.SetDefault("QWEN_MAX_TOKENS", 4000)
	v.SetDefault("QWEN_TIMEOUT", "90s")
	v.SetDefault("LORE_CACHE_TTL", "24h")
	v.SetDefault("AUDIO_S3_REGION", "us-east-1")
	v.SetDefault("AUDIO_PRESIGN_TTL", "1h")
	v.SetDefault("AUDIO_MAX_NARRATIVE", 580)
	v.SetDefault("GENERATIONS_PER_MINUTE", 10)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "CinePrep")
	v.SetDefault("APP_URL", "http://localhost:5173")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "cineprep-api")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")
	v.SetDefault("TRACING_STACKDRIVER_PROJECT_ID", "")
	v.SetDefault("TRACING_DATADOG_AGENT_ADDRESS", "localhost:8126")
	v.SetDefault("TRACING_DATADOG_API_KEY", "")
	v.SetDefault("TRACING_XRAY_REGION", "us-west-2")
	v.SetDefault("TRACING_AGENT_ENDPOINT", "localhost:8126")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// a missing env file is fine
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// NODE_ENV is what existing deployments set
	environment := v.GetString("ENVIRONMENT")
	if nodeEnv := v.GetString("NODE_ENV"); nodeEnv != "" && os.Getenv("ENVIRONMENT") == "" {
		environment = nodeEnv
	}

	config := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("PORT"),
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			ServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			AnonKey:        v.GetString("SUPABASE_ANON_KEY"),
			JWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
			HookSecret:     v.GetString("SUPABASE_AUTH_HOOK_SECRET"),
		},
		Firebase: FirebaseConfig{
			ProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		},
		Qwen: QwenConfig{
			APIKey:      v.GetString("QWEN_API_KEY"),
			BaseURL:     strings.TrimRight(v.GetString("QWEN_BASE_URL"), "/"),
			Model:       v.GetString("QWEN_MODEL"),
			TTSURL:      v.GetString("QWEN_TTS_URL"),
			TTSModel:    v.GetString("QWEN_TTS_MODEL"),
			TTSVoice:    v.GetString("QWEN_TTS_VOICE"),
			Temperature: v.GetFloat64("QWEN_TEMPERATURE"),
			MaxTokens:   v.GetInt("QWEN_MAX_TOKENS"),
			Timeout:     v.GetDuration("QWEN_TIMEOUT"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("REDIS_URL"),
			LoreTTL:  v.GetDuration("LORE_CACHE_TTL"),
		},
		Audio: AudioConfig{
			S3Bucket:     v.GetString("AUDIO_S3_BUCKET"),
			S3Region:     v.GetString("AUDIO_S3_REGION"),
			S3Endpoint:   v.GetString("AUDIO_S3_ENDPOINT"),
			S3AccessKey:  v.GetString("AUDIO_S3_ACCESS_KEY"),
			S3SecretKey:  v.GetString("AUDIO_S3_SECRET_KEY"),
			PresignTTL:   v.GetDuration("AUDIO_PRESIGN_TTL"),
			MaxNarrative: v.GetInt("AUDIO_MAX_NARRATIVE"),
		},
		RateLimit: RateLimitConfig{
			GenerationsPerMinute: v.GetInt("GENERATIONS_PER_MINUTE"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Tracing: TracingConfig{
			Enabled:              v.GetBool("TRACING_ENABLED"),
			ServiceName:          v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability:  v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:        v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:       v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:       v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			StackdriverProjectID: v.GetString("TRACING_STACKDRIVER_PROJECT_ID"),
			DatadogAgentAddress:  v.GetString("TRACING_DATADOG_AGENT_ADDRESS"),
			DatadogAPIKey:        v.GetString("TRACING_DATADOG_API_KEY"),
			XRayRegion:           v.GetString("TRACING_XRAY_REGION"),
			AgentEndpoint:        v.GetString("TRACING_AGENT_ENDPOINT"),
			MetricsExporter:      v.GetString("TRACING_METRICS_EXPORTER"),
		},
		AppURL:      strings.TrimRight(v.GetString("APP_URL"), "/"),
		Environment: environment,
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if config.Database.URL != "" {
		if err := config.Database.applyURL(config.Database.URL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

// applyURL fills the discrete connection fields from a postgres:// URL so the
// rest of the code can keep building DSNs the same way.
func (d *DatabaseConfig) applyURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	d.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid port %q", p)
		}
		d.Port = port
	}
	if u.User != nil {
		d.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			d.Password = pw
		}
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		d.DBName = name
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		d.SSLMode = mode
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// QwenConfigured reports whether an LLM key is present.
func (c *Config) QwenConfigured() bool {
	return c.Qwen.APIKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
