package server

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"danceslot/internal/auth"
	"danceslot/internal/logger"
)

// RequestLoggingMiddleware logs every request once it completes. Server
// errors are logged at error level.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + redactQuery(c.Request.URL.Query(), raw)
		}

		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		if status >= 500 {
			logger.Error("HTTP request", kv...)
			return
		}
		logger.Info("HTTP request", kv...)
	}
}

// redactQuery hides websocket access tokens from the request log.
func redactQuery(q url.Values, raw string) string {
	if !q.Has(auth.QueryTokenParam) {
		return raw
	}
	q.Set(auth.QueryTokenParam, "REDACTED")
	return q.Encode()
}
