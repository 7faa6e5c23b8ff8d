package router

import (
	"context"

	appuser "github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/internal/container"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-ddd-identity-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-identity-service/internal/router/modules"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	service := appuser.NewService(
		container.GetUserRepo(),
		container.GetHasher(),
		container.GetEvents(),
	)

	var searcher handlers.Searcher
	if es := container.GetES(); es != nil {
		searcher = search.NewUserIndex(es, container.GetConfig().ESUsersIndex)
	}

	handler := handlers.NewUserHandler(service, searcher, container.GetLogger())

	return UserModuleDeps{
		Service: service,
		Handler: handler,
	}
}

func healthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	if r.Logger == nil {
		r.Logger = container.GetLogger()
	}
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler))
	r.Add(modules.NewHealthModule(healthChecks()))
	if cfg := container.GetConfig(); cfg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
