package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"todosync/internal/container"
	handlers "todosync/internal/interface/http"
	"todosync/internal/interface/middleware"
	"todosync/pkg/helpers"
)

// AuthModule wires registration, login and logout.
// Public: POST /api/register, POST /api/login, POST /api/refresh
// Protected: POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Tight per-IP limits on the public endpoints; the limiter supplies
	// the too-many-attempts message registration clients map.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetSessionStore(), m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
	}
}
