package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key-value")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role-key-value")
	t.Setenv("CLERK_JWKS_URL", "https://clerk.example.com/.well-known/jwks.json")
	t.Setenv("CLERK_WEBHOOK_SIGNING_SECRET", "whsec_dGVzdHNlY3JldA==")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.False(t, cfg.Database.RunMigrations)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CLERK_ISSUER", "https://clerk.example.com")
	t.Setenv("REDIS_ADDRESS", "redis.internal:6380")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_MINUTE", "120")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://clerk.example.com", cfg.Clerk.Issuer)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadConfigValidation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(t *testing.T)
		wantErr string
	}{
		{
			name:    "missing supabase URL",
			mutate:  func(t *testing.T) { t.Setenv("SUPABASE_URL", "") },
			wantErr: "supabase URL is required",
		},
		{
			name:    "missing anon key",
			mutate:  func(t *testing.T) { t.Setenv("SUPABASE_ANON_KEY", "") },
			wantErr: "anon key is required",
		},
		{
			name:    "short service role key",
			mutate:  func(t *testing.T) { t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "short") },
			wantErr: "at least",
		},
		{
			name:    "missing JWKS URL",
			mutate:  func(t *testing.T) { t.Setenv("CLERK_JWKS_URL", "") },
			wantErr: "JWKS URL is required",
		},
		{
			name:    "missing webhook secret",
			mutate:  func(t *testing.T) { t.Setenv("CLERK_WEBHOOK_SIGNING_SECRET", "") },
			wantErr: "webhook signing secret is required",
		},
		{
			name:    "invalid rate limit",
			mutate:  func(t *testing.T) { t.Setenv("RATE_LIMIT_REQUESTS_PER_MINUTE", "0") },
			wantErr: "requests per minute must be positive",
		},
		{
			name: "migrations enabled without database URL",
			mutate: func(t *testing.T) {
				t.Setenv("DATABASE_RUN_MIGRATIONS", "true")
			},
			wantErr: "database URL is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			tc.mutate(t)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
