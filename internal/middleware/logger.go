package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proptalk/proptalk/internal/logger"
)

// LoggerKey is the gin context key holding the per-request child logger.
const LoggerKey = "logger"

// Logger logs each request after it completes and stashes a request-scoped
// child logger in the gin context for handlers.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if len(c.Request.URL.RawQuery) > 0 {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			requestLogger.Error("request completed with server error", nil, fields)
		case status >= 400:
			requestLogger.Warn("request completed with client error", fields)
		default:
			requestLogger.Info("request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger from the gin context, or nil.
func GetLogger(c *gin.Context) *logger.Logger {
	if log, exists := c.Get(LoggerKey); exists {
		if requestLogger, ok := log.(*logger.Logger); ok {
			return requestLogger
		}
	}
	return nil
}
