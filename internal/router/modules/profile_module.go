package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"todosync/internal/container"
	handlers "todosync/internal/interface/http"
	"todosync/internal/interface/middleware"
	"todosync/pkg/helpers"
)

// ProfileModule wires the profile document endpoints.
// Protected: GET /api/profile, PUT /api/profile/username, PUT /api/profile/avatar
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetSessionStore(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.Get)
		auth.PUT("/profile/username", m.Handler.UpdateUsername)
		auth.PUT("/profile/avatar", m.Handler.UpdateAvatar)
	}
}
