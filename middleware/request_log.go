package middleware

import (
	"time"

	"github.com/LovationAdmin/foodgram-api/metrics"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request and records it in the API metrics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.RecordAPIRequest(c.Request.Method, route, status, duration)
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path, GetUserID(c), status, duration.String())
	}
}
