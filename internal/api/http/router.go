package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Profiles       *handlers.ProfilesHandler
	Dashboard      *handlers.DashboardHandler
	Metrics        *observability.Metrics
	AuthMiddleware fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware, auth.RequireAuthenticated())

	api.Get("/categories", cfg.Complaints.ListCategories)

	complaints := api.Group("/complaints")
	complaints.Post("/", cfg.Complaints.CreateComplaint)
	complaints.Get("/", cfg.Complaints.ListComplaints)
	complaints.Get("/:id", cfg.Complaints.GetComplaint)
	complaints.Patch("/:id", cfg.Complaints.UpdateComplaint)
	complaints.Patch("/:id/status", cfg.Complaints.UpdateStatus)
	complaints.Patch("/:id/priority", cfg.Complaints.UpdatePriority)
	complaints.Post("/:id/attachment", cfg.Complaints.UploadAttachment)
	complaints.Get("/:id/history", cfg.Complaints.History)

	api.Get("/me", cfg.Profiles.Me)
	api.Patch("/me", cfg.Profiles.UpdateMe)
	api.Post("/me/avatar", cfg.Profiles.UploadAvatar)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", cfg.Dashboard.Stats)
	dashboard.Get("/recent", cfg.Dashboard.Recent)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Put("/profiles/:id/role", cfg.Profiles.SetRole)
}
