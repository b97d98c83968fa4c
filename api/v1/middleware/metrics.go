package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestObserver records served requests
type RequestObserver interface {
	ObserveRequest(method, route string, code int)
}

// Metrics reports every request to observer, labelled by route template
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status())
	}
}
