package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skill-ladder/internal/config"
	"skill-ladder/internal/delivery/http/handler"
	"skill-ladder/internal/delivery/http/middleware"
	"skill-ladder/internal/delivery/http/routes"
	"skill-ladder/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	routes.NewRegistry(routes.Handlers{
		Health:     handler.NewHealthHandler(c.DB, c.Cache),
		Levels:     handler.NewLevelHandler(c.LevelUsecase),
		Frameworks: handler.NewFrameworkHandler(c.FrameworkUsecase),
		Migrations: handler.NewMigrationHandler(c.MigrationUsecase),
		WS:         ws.NewHandler(c.Hub, c.Logger),
	}).Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, applies schema migrations and starts the
// websocket hub. The returned cleanup stops the hub and closes connections.
func Bootstrap(cfg config.Config, logger logrus.FieldLogger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init container: %w", err)
	}

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	if err := c.Migrate(migCtx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return New(c), cleanup, nil
}

// registerGlobalMiddleware installs the access log outside the error
// middleware so it records the rendered status.
func registerGlobalMiddleware(app *fiber.App, logger logrus.FieldLogger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
