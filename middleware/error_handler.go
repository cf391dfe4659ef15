package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ascent-climbing/ascent-backend/errors"
	"github.com/ascent-climbing/ascent-backend/logger"
)

// ErrorResponse is the JSON body produced for every failed request.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler translates errors attached via c.Error into HTTP responses.
// Handlers never write error bodies themselves; they attach an AppError and
// abort, and this middleware picks the status code and response shape.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appError, ok := err.(*apperrors.AppError); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
			}
			// Details stay hidden outside debug mode except for errors the
			// caller can act on.
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == apperrors.ValidationError ||
				appError.Type == apperrors.NotFoundError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		if c.Errors.Last().Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, 400, "Request binding error")
			response := ErrorResponse{
				Type:    string(apperrors.ValidationError),
				Message: "Failed to bind request",
				Code:    "400",
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(400, response)
			return
		}

		logger.LogHTTPError(c, err, 500, "Unexpected server error")
		response := ErrorResponse{
			Type:    string(apperrors.ServerError),
			Message: "Internal Server Error",
			Code:    "500",
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(500, response)
	}
}
