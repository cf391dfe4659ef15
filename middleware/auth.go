package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/logger"
)

// AuthMiddleware verifies the Authorization bearer token on every request and
// stores the verified Clerk user id plus the raw session token in the gin
// context. The raw token is kept so downstream Supabase calls can run under
// the caller's row level security policies.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	log := logger.GetLogger()

	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if err := c.Error(apperrors.AuthenticationFailed("Missing or malformed Authorization header")); err != nil {
				log.Errorw("Failed to add authentication error to context", "error", err)
			}
			c.Abort()
			return
		}

		userID, err := validator.Validate(token)
		if err != nil {
			message := "Invalid session token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Session token expired"
			}
			log.Debugw("Token validation failed",
				"error", err,
				"path", c.Request.URL.Path,
				"token", logger.MaskToken(token),
			)
			if cerr := c.Error(apperrors.AuthenticationFailed(message)); cerr != nil {
				log.Errorw("Failed to add authentication error to context", "error", cerr)
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
