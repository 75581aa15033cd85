package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/license"
)

// LicenseGate blocks generation endpoints while the cached license status
// is invalid. A nil checker disables the gate.
func LicenseGate(checker *license.Checker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if checker != nil && !checker.Status().Valid {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "no valid license for this device",
			})
			return
		}
		ctx.Next()
	}
}
