package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/meditrack/internal/api/http/handlers"
	"github.com/spec-kit/meditrack/internal/auth"
	"github.com/spec-kit/meditrack/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Patients       *handlers.PatientsHandler
	Guard          *auth.AccessGuard
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	authenticated := cfg.AuthMiddleware.Require(cfg.Guard.Authenticated())
	doctorOnly := cfg.AuthMiddleware.Require(cfg.Guard.RequireRole(domain.RoleDoctor))
	adminOnly := cfg.AuthMiddleware.Require(cfg.Guard.RequireRole(domain.RoleAdmin))

	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Post("/register", cfg.Users.Register)
	if cfg.LoginLimiter != nil {
		app.Post("/login", cfg.LoginLimiter, cfg.Users.Login)
	} else {
		app.Post("/login", cfg.Users.Login)
	}
	app.Get("/me", authenticated, cfg.Users.Me)

	patients := app.Group("/patients")
	patients.Get("/all", adminOnly, cfg.Patients.ListAll)
	patients.Post("/", doctorOnly, cfg.Patients.Create)
	patients.Get("/", doctorOnly, cfg.Patients.ListMine)
	patients.Put("/:id", doctorOnly, cfg.Patients.Update)
	patients.Delete("/:id", doctorOnly, cfg.Patients.Delete)
}
