package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"deedflow/internal/common/logger"
)

// Recovery converts handler panics into 500 responses. http.ErrAbortHandler
// is re-raised untouched: handlers panic with it to abort a response whose
// status line and partial body already went out.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && err == http.ErrAbortHandler {
					panic(r)
				}
				log.Error("handler panic", map[string]interface{}{
					"requestId": GetRequestID(c),
					"path":      c.Request.URL.Path,
					"panic":     r,
					"stack":     string(debug.Stack()),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}
