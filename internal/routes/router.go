package routes

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"stayharbor/channelsync/internal/api"
	"stayharbor/channelsync/internal/common"
	"stayharbor/channelsync/internal/db"
	"stayharbor/channelsync/internal/logging"
	"stayharbor/channelsync/internal/metrics"
	"stayharbor/channelsync/internal/middleware"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Operator credentials
	apiKey := os.Getenv("CHANNELSYNC_API_KEY")
	if apiKey == "" {
		logging.Warn("CHANNELSYNC_API_KEY not set, API key auth disabled")
	}
	jwtSecret := os.Getenv("CHANNELSYNC_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-do-not-use-in-production"
		logging.Warn("CHANNELSYNC_JWT_SECRET not set, using development secret")
	}
	tokenSigner := common.NewTokenSignerService([]byte(jwtSecret))

	// Initialize handlers with dependencies
	connectionsHandler := api.NewConnectionsHandler(deps.Services.Connections, deps.Services.Stats)
	syncHandler := api.NewSyncHandler(deps.Engine.Coordinator, deps.Engine.Scheduler, deps.Services.Connections, deps.Services.Stats)
	lodgifyHandler := api.NewLodgifyHandler(deps.Engine.Lodgify)

	// Start the cadence loop for auto-sync connections
	go deps.Engine.Scheduler.Start(context.Background())
	logging.Info("Sync scheduler started")

	// Register API routes
	RegisterAPIRoutes(r, metricsReg, apiKey, tokenSigner, connectionsHandler, syncHandler, lodgifyHandler)

	return r
}
