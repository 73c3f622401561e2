package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/response"
)

// RequirePermission admits only admin tokens carrying the permission.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !holdsPermission(claims.Permissions, perm) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireAnyPermission admits admin tokens carrying at least one of perms.
func RequireAnyPermission(perms ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		for _, perm := range perms {
			if holdsPermission(claims.Permissions, perm) {
				c.Next()
				return
			}
		}
		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// holdsPermission matches the claim's granted codes against a typed
// permission. Claims carry plain strings because they round-trip through
// JWT JSON.
func holdsPermission(granted []string, perm model.Permission) bool {
	for _, g := range granted {
		if g == string(perm) {
			return true
		}
	}
	return false
}
