package logger

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"svix-signature":      true,
	"apikey":              true,
	"proxy-authorization": true,
}

// filterSensitiveHeaders replaces credential-bearing header values so request
// metadata can be logged safely.
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if sensitiveHeaders[strings.ToLower(name)] {
			filtered[name] = "[REDACTED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// LogHTTPError logs a request-scoped error with the standard HTTP metadata.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	log := GetLogger()

	fields := []interface{}{
		"error", err,
		"status_code", statusCode,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
		"headers", filterSensitiveHeaders(c.Request.Header),
	}

	if userID, exists := c.Get("user_id"); exists {
		fields = append(fields, "user_id", userID)
	}
	if requestID, exists := c.Get("request_id"); exists {
		fields = append(fields, "request_id", requestID)
	}

	if statusCode >= 500 {
		log.Errorw(message, fields...)
	} else {
		log.Warnw(message, fields...)
	}
}
