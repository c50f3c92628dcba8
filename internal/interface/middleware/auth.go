package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todosync/internal/session"
	"todosync/pkg/helpers"
	"todosync/pkg/response"
)

// Auth validates the access token and requires a live session whose id
// matches the token's. It sets userID and userEmail in the Gin context
// on success.
func Auth(sessions *session.Store, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		sess, err := sessions.Current(c.Request.Context(), claims.UserID)
		if err != nil || sess == nil || sess.SID != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		c.Set("userID", sess.UserID)
		c.Set("userEmail", sess.Email)
		c.Next()
	}
}
