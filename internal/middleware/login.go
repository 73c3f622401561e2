package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evaluia/examcore-backend/internal/response"
	"github.com/evaluia/examcore-backend/internal/service"
)

// RequireActiveLogin enforces the single-active-login rule: a participant
// token is honored only while its JTI is the one recorded at login. A
// mismatch means the login was reset by an admin or replaced from another
// device, and the stale token is rejected. Admin tokens pass through
// untouched; the rule exists to keep one participant from running an exam
// on two screens, not to limit dashboard sessions.
func RequireActiveLogin(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.TokenType == service.TokenTypeParticipant {
			if err := authService.ValidateParticipantLogin(c.Request.Context(), claims.UserID, claims.ID); err != nil {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrLoginInvalidated)
				return
			}
		}

		c.Next()
	}
}
