package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	currentUserKey = "current_user"
	tokenKey       = "auth_token"
)

// CurrentUser is the staff member behind a request.
type CurrentUser struct {
	ID    int64  `json:"user_id"`
	Email string `json:"user_email"`
}

// LocalOperator is used for every request when auth is disabled.
var LocalOperator = CurrentUser{Email: "local-operator"}

func setCurrentUser(c *gin.Context, user CurrentUser, token string) {
	c.Set(currentUserKey, user)
	if token != "" {
		c.Set(tokenKey, token)
	}
}

// GetUserFromContext returns the user set by WithAuthCheck.
func GetUserFromContext(c *gin.Context) (CurrentUser, bool) {
	if user, exists := c.Get(currentUserKey); exists {
		if u, ok := user.(CurrentUser); ok {
			return u, true
		}
	}
	return CurrentUser{}, false
}

// GetTokenFromContext returns the bearer token of an authenticated request.
func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(tokenKey)
}
