package middleware

import (
	"net/http"

	"campusrun/models"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests from actors outside the given role.
// Must run after JWTAuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorVal, exists := c.Get("actor")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		actor, ok := actorVal.(*models.User)
		if !ok || actor.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access restricted to " + string(role) + " accounts",
			})
			return
		}
		c.Next()
	}
}
