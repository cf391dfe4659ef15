package main

import (
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ascent-climbing/ascent-backend/config"
	"github.com/ascent-climbing/ascent-backend/db"
	"github.com/ascent-climbing/ascent-backend/handlers"
	"github.com/ascent-climbing/ascent-backend/internal/auth"
	"github.com/ascent-climbing/ascent-backend/internal/service"
	supabasestore "github.com/ascent-climbing/ascent-backend/internal/store/supabase"
	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/middleware"
	"github.com/ascent-climbing/ascent-backend/router"
	"github.com/ascent-climbing/ascent-backend/services"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() {
		if err := logger.Close(); err != nil {
			log.Errorf("Failed to close logger: %v", err)
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.RunMigrations && cfg.Database.URL != "" {
		if err := db.RunMigrations(cfg.Database.URL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.IsProduction() {
		host := cfg.Redis.Address
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		redisOptions.TLSConfig = &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)

	// Caller-scoped storage. API requests get Supabase clients carrying the
	// caller's session token; only the webhook identity sync holds the
	// service role key.
	clientFactory := supabasestore.NewClientFactory(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	identityStore := supabasestore.NewIdentityStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	userService := service.NewUserService(clientFactory)
	webhookService := service.NewWebhookService(identityStore)
	rateLimitService := services.NewRateLimitService(redisClient)
	healthService := services.NewHealthService(cfg.Supabase.URL, cfg.Supabase.AnonKey, redisClient, cfg.Server.Version)

	verifier, err := auth.NewWebhookVerifier(cfg.Clerk.WebhookSecret)
	if err != nil {
		log.Fatalf("Failed to initialize webhook verifier: %v", err)
	}

	validator, err := middleware.NewJWTValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	r := router.SetupRouter(router.Dependencies{
		Config:         cfg,
		JWTValidator:   validator,
		RateLimiter:    rateLimitService,
		UserHandler:    handlers.NewUserHandler(userService),
		WebhookHandler: handlers.NewWebhookHandler(verifier, webhookService),
		HealthHandler:  handlers.NewHealthHandler(healthService),
	})

	log.Infof("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
