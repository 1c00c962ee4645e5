package main

import (
	"log/slog"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/repositories"
	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Dependencies are the external resources the HTTP app is built on.
// Events and Limiter are optional.
type Dependencies struct {
	Config  config.Config
	DB      *gorm.DB
	Events  services.EventPublisher
	Limiter middleware.Allower
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(deps Dependencies) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	taskRepo := repositories.NewGORMTaskRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, deps.Config.JWT, services.WithAuthEvents(deps.Events))
	userService := services.NewUserService(userRepo, taskRepo, deps.Events)
	taskService := services.NewTaskService(taskRepo, userRepo, deps.Events)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, middleware.RateLimit(deps.Limiter, "login"))
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService, middleware.AuthRequired(authService))
	reportHandler := handlers.NewReportHandler(userService)
	systemHandler := handlers.NewSystemHandler()

	app := fiber.New(fiber.Config{
		AppName:               "taskboard",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			slog.ErrorContext(c.UserContext(), "panic recovered", "method", c.Method(), "path", c.Path(), "panic", e)
		},
	}))
	if deps.AccessLog {
		app.Use(logger.New())
	}

	// --- Routes ---
	systemHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)
	userHandler.RegisterRoutes(app)
	taskHandler.RegisterRoutes(app)
	reportHandler.RegisterRoutes(app)

	return app
}
