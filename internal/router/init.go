package router

import (
	"todosync/internal/application"
	"todosync/internal/container"
	pginfra "todosync/internal/infrastructure/postgres"
	handlers "todosync/internal/interface/http"
	"todosync/internal/router/modules"
)

// InitModules builds every feature module from the container singletons
// and registers it with the router registry. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	tasks := pginfra.NewTaskRepository(pool)

	authSvc := application.NewAuthService(
		users,
		profiles,
		container.GetSessionStore(),
		container.GetJWT(),
		container.GetRabbitPub(),
		logger,
		cfg.MailSendEnabled,
	)
	profileSvc := application.NewProfileService(
		users,
		profiles,
		container.GetGCS(),
		cfg.GCSBucket,
		cfg.AvatarMaxBytes,
		logger,
	)
	taskSvc := application.NewTaskService(
		tasks,
		container.GetTaskFeed(),
		logger,
		container.GetES(),
		cfg.ESTasksIndex,
	)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	profileHandler := handlers.NewProfileHandler(profileSvc, logger)
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetTaskFeed(), container.GetSessionStore(), logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewProfileModule(profileHandler, container.GetJWT()))
	r.Add(modules.NewTaskModule(taskHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
