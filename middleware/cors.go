package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ascent-climbing/ascent-backend/config"
	"github.com/ascent-climbing/ascent-backend/logger"
)

// CORSMiddleware configures cross-origin access for the mobile app and the
// local development clients. Production restricts origins to the configured
// allow list; every other environment accepts any origin.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log := logger.GetLogger()

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if cfg.IsProduction() && len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		log.Infow("CORS restricted to configured origins", "origins", cfg.Server.AllowedOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
		log.Info("CORS allows all origins")
	}

	return cors.New(corsConfig)
}
