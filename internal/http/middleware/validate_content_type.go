package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose body is not JSON.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodPost || ctx.Request.Method == http.MethodPut {
			contentType := ctx.GetHeader("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"success": false,
					"error":   "Content-Type must be application/json",
				})
				return
			}
		}
		ctx.Next()
	}
}
