package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"todosync/internal/container"
	handlers "todosync/internal/interface/http"
	"todosync/internal/interface/middleware"
	"todosync/pkg/helpers"
)

// TaskModule wires the task CRUD and the live stream.
// Protected: GET /api/tasks, GET /api/tasks/stream, GET /api/tasks/search,
// POST /api/tasks, POST /api/tasks/:id/toggle, DELETE /api/tasks/:id
type TaskModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetSessionStore(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/tasks", m.Handler.List)
		auth.GET("/tasks/stream", m.Handler.Stream)
		auth.GET("/tasks/search", m.Handler.Search)
		auth.POST("/tasks", m.Handler.Create)
		auth.POST("/tasks/:id/toggle", m.Handler.Toggle)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
