package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ascent-climbing/ascent-backend/config"
	"github.com/ascent-climbing/ascent-backend/handlers"
	"github.com/ascent-climbing/ascent-backend/middleware"
	"github.com/ascent-climbing/ascent-backend/services"
)

// Dependencies holds everything SetupRouter needs to wire the HTTP surface.
type Dependencies struct {
	Config         *config.Config
	JWTValidator   middleware.Validator
	RateLimiter    services.RateLimiterInterface
	UserHandler    *handlers.UserHandler
	WebhookHandler *handlers.WebhookHandler
	HealthHandler  *handlers.HealthHandler
}

// SetupRouter configures the gin engine with all routes and middleware.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(deps.Config))

	// Health and metrics stay outside auth so probes and scrapers work.
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhooks authenticate via signature verification, not bearer tokens.
	r.POST("/webhooks/clerk", deps.WebhookHandler.HandleClerkWebhook)

	v1 := r.Group("/v1")
	{
		rateLimit := middleware.RateLimitMiddleware(
			deps.RateLimiter,
			deps.Config.RateLimit.RequestsPerMinute,
			time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
		)

		userRoutes := v1.Group("/users")
		userRoutes.Use(middleware.AuthMiddleware(deps.JWTValidator), rateLimit)
		{
			userRoutes.GET("/search", deps.UserHandler.SearchUsersHandler)
			userRoutes.PATCH("", deps.UserHandler.UpdateUserHandler)
			userRoutes.GET("/:clerkId", deps.UserHandler.GetUserProfileHandler)
			userRoutes.POST("/:clerkId/follow", deps.UserHandler.FollowUserHandler)
			userRoutes.DELETE("/:clerkId/follow", deps.UserHandler.UnfollowUserHandler)
			userRoutes.GET("/:clerkId/is-following", deps.UserHandler.IsFollowingHandler)
		}
	}

	return r
}
