package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/queuedesk/queue-service/internal/api/http/handlers"
	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Queue          *handlers.QueueHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Counters       *handlers.CountersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The API is served both at the root and
// under /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	registerAPI(app, cfg)
	registerAPI(app.Group("/api"), cfg)
}

func registerAPI(router fiber.Router, cfg RouteConfig) {
	required := cfg.AuthMiddleware.Handle
	optional := cfg.AuthMiddleware.HandleOptional
	staff := auth.RequireRole(domain.RoleStaff, domain.RoleAdmin)
	admin := auth.RequireRole(domain.RoleAdmin)

	authGroup := router.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)

	tickets := router.Group("/tickets")
	tickets.Post("/", optional, cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/user", optional, cfg.Tickets.ListUserTickets)
	tickets.Post("/next", cfg.Tickets.CallNext)
	tickets.Put("/:id/activate", optional, cfg.Tickets.ActivateTicket)
	tickets.Put("/:id/complete", required, staff, cfg.Tickets.CompleteTicket)
	tickets.Put("/:id/no-show", required, staff, cfg.Tickets.MarkNoShow)

	queue := router.Group("/queue")
	queue.Get("/", cfg.Queue.Queue)
	queue.Get("/now-serving", cfg.Queue.NowServing)

	services := router.Group("/services")
	services.Get("/", cfg.Services.List)
	services.Post("/", required, admin, cfg.Services.Create)
	services.Put("/:id", required, admin, cfg.Services.Update)
	services.Delete("/:id", required, admin, cfg.Services.Delete)

	counters := router.Group("/counters")
	counters.Get("/", cfg.Counters.List)
	counters.Post("/", required, admin, cfg.Counters.Create)
	counters.Put("/:id", required, admin, cfg.Counters.Update)
	counters.Put("/:id/assign-service", required, admin, cfg.Counters.AssignService)
	counters.Delete("/:id", required, admin, cfg.Counters.Delete)
}
