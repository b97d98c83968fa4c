package middleware

import (
	"fmt"

	"watchtower/internal/httpx"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into the generic 500 response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		httpx.FailErr(c, httpx.ErrInternalError(fmt.Errorf("panic: %v", recovered)))
	})
}
