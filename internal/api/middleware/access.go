package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

// AccessGate enforces the progression rules server side: the route is only
// reachable if the user's evaluated capabilities include it. Runs after
// LoadUser.
func AccessGate(catalog *service.TierCatalog, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		caps := service.EvaluateAccess(service.AccessInputFromUser(user), catalog)
		if !caps.AllowsRoute(route) {
			response.Forbidden(c, "not available at your current stage")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly requires the loaded user to hold the admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
