package routes

import (
	"skill-ladder/internal/delivery/http/handler"
	"skill-ladder/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	health     *handler.HealthHandler
	levels     *handler.LevelHandler
	frameworks *handler.FrameworkHandler
	migrations *handler.MigrationHandler
	ws         *ws.Handler
}

type Handlers struct {
	Health     *handler.HealthHandler
	Levels     *handler.LevelHandler
	Frameworks *handler.FrameworkHandler
	Migrations *handler.MigrationHandler
	WS         *ws.Handler
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{
		health:     h.Health,
		levels:     h.Levels,
		frameworks: h.Frameworks,
		migrations: h.Migrations,
		ws:         h.WS,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if r.ws != nil {
		app.Get("/ws/migrations", r.ws.HandleMigrationsWS)
	}
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	v1 := app.Group("/api").Group("/v1")
	if r.levels != nil {
		r.levels.RegisterRoutes(v1)
	}
	if r.frameworks != nil {
		r.frameworks.RegisterRoutes(v1)
	}
	if r.migrations != nil {
		r.migrations.RegisterRoutes(v1)
	}
}
