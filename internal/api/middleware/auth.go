package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/pkg/jwt"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/repository"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
	UserKey   = "user"
)

// Auth validates the bearer token and stores the caller's ID and role.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// LoadUser fetches the authenticated user's row so downstream gates and
// handlers see current approval, tier and orientation state rather than
// whatever the token was issued against.
func LoadUser(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(userID)
		if err != nil {
			response.AuthError(c, "account no longer exists")
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Forbidden(c, "account is disabled")
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// GetUserID reads the caller's ID from the context.
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetUser reads the loaded user row from the context.
func GetUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
