package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"danceslot/internal/auth"
	"danceslot/internal/metrics"
	"danceslot/internal/realtime"
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

// RealtimeAccessMiddleware guards /ws/:table. The bookings and "*" streams
// carry client contact details and need an admin token.
func RealtimeAccessMiddleware() gin.HandlerFunc {
	requireAdmin := auth.RequireRole(auth.RoleAdmin)
	return func(c *gin.Context) {
		switch c.Param("table") {
		case realtime.TableBookings, realtime.AllTables:
			requireAdmin(c)
		default:
			c.Next()
		}
	}
}
