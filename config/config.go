// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minSecretLength = 8
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT"`
	Port           string      `mapstructure:"PORT"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
	Version        string      `mapstructure:"VERSION"`
}

// SupabaseConfig holds the Supabase project credentials. The anon key is
// combined with the caller's session token for RLS-scoped access; the service
// key is used only by the webhook identity-sync path.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL"`
	AnonKey    string `mapstructure:"ANON_KEY"`
	ServiceKey string `mapstructure:"SERVICE_KEY"`
}

// ClerkConfig holds the identity-provider integration settings.
type ClerkConfig struct {
	// JWKSURL is the Clerk instance's JWKS endpoint used to verify session tokens.
	JWKSURL string `mapstructure:"JWKS_URL"`
	// Issuer, when set, is enforced against the token's iss claim.
	Issuer string `mapstructure:"ISSUER"`
	// WebhookSecret is the svix signing secret for Clerk webhook deliveries.
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
}

// RedisConfig holds Redis connection details for rate limiting.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// RateLimitConfig holds configuration for per-endpoint rate limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"REQUESTS_PER_MINUTE"`
	WindowSeconds     int `mapstructure:"WINDOW_SECONDS"`
}

// DatabaseConfig holds the direct Postgres URL used only for running schema
// migrations at startup. Runtime data access goes through PostgREST so the
// caller's token is always applied.
type DatabaseConfig struct {
	URL           string `mapstructure:"URL"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER"`
	Supabase  SupabaseConfig  `mapstructure:"SUPABASE"`
	Clerk     ClerkConfig     `mapstructure:"CLERK"`
	Redis     RedisConfig     `mapstructure:"REDIS"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT"`
	Database  DatabaseConfig  `mapstructure:"DATABASE"`
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// applies defaults, unmarshals into Config, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_MINUTE", 60)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("DATABASE.URL", "")
	v.SetDefault("DATABASE.RUN_MIGRATIONS", false)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.ANON_KEY", "SUPABASE_ANON_KEY"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"},
		{"CLERK.JWKS_URL", "CLERK_JWKS_URL"},
		{"CLERK.ISSUER", "CLERK_ISSUER"},
		{"CLERK.WEBHOOK_SECRET", "CLERK_WEBHOOK_SIGNING_SECRET"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"RATE_LIMIT.REQUESTS_PER_MINUTE", "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		{"DATABASE.URL", "DATABASE_URL"},
		{"DATABASE.RUN_MIGRATIONS", "DATABASE_RUN_MIGRATIONS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"supabase_url", cfg.Supabase.URL,
		"clerk_jwks_url", cfg.Clerk.JWKSURL,
		"webhook_secret", logger.MaskToken(cfg.Clerk.WebhookSecret),
	)
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Supabase.URL == "" {
		return fmt.Errorf("supabase URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.Supabase.URL); err != nil {
		return fmt.Errorf("invalid supabase URL: %w", err)
	}
	if cfg.Supabase.AnonKey == "" {
		return fmt.Errorf("supabase anon key is required")
	}
	if cfg.Supabase.ServiceKey == "" {
		return fmt.Errorf("supabase service role key is required")
	}
	if len(cfg.Supabase.ServiceKey) < minSecretLength {
		return fmt.Errorf("supabase service role key must be at least %d characters long", minSecretLength)
	}

	if cfg.Clerk.JWKSURL == "" {
		return fmt.Errorf("clerk JWKS URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.Clerk.JWKSURL); err != nil {
		return fmt.Errorf("invalid clerk JWKS URL: %w", err)
	}
	if cfg.Clerk.WebhookSecret == "" {
		return fmt.Errorf("clerk webhook signing secret is required")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	if cfg.Database.RunMigrations && cfg.Database.URL == "" {
		return fmt.Errorf("database URL is required when migrations are enabled")
	}

	return nil
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
