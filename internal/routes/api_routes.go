package routes

import (
	"github.com/go-chi/chi/v5"

	"stayharbor/channelsync/internal/api"
	"stayharbor/channelsync/internal/common"
	"stayharbor/channelsync/internal/metrics"
	"stayharbor/channelsync/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(
	r chi.Router,
	metricsReg *metrics.MetricsRegistry,
	apiKey string,
	tokenSigner *common.TokenSignerService,
	connectionsHandler *api.ConnectionsHandler,
	syncHandler *api.SyncHandler,
	lodgifyHandler *api.LodgifyHandler,
) {

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(apiKey, tokenSigner)) // global: all routes must be authenticated

		// Connection management
		v1.Get("/connections", connectionsHandler.List())
		v1.Post("/connections", connectionsHandler.Create())
		v1.Get("/connections/{id}", connectionsHandler.Get())
		v1.Patch("/connections/{id}", connectionsHandler.Update())
		v1.Delete("/connections/{id}", connectionsHandler.Delete())

		// Sync history and dashboard counters
		v1.Get("/sync/logs", syncHandler.ListLogs())
		v1.Get("/sync/stats", syncHandler.GetStats())

		// Connection setup helpers
		v1.Post("/lodgify/test-key", lodgifyHandler.TestKey())

		// Sync triggers hit external platforms, rate limited per client
		v1.Group(func(triggers chi.Router) {
			triggers.Use(middleware.RateLimitMiddleware)
			triggers.Post("/connections/{id}/sync", syncHandler.TriggerSync())
			triggers.Post("/sync/all", syncHandler.SyncAll())
		})
	})
}
