package middleware

import (
	"time"

	"watchtower/internal/httpx"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger attaches a request scoped logrus entry and logs each request
// once it has been served
func Logger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		httpx.SetLogger(c, entry)

		c.Next()

		entry = entry.WithFields(logrus.Fields{
			"code":    c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
