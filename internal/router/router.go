package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/handlers"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/middleware"
	"github.com/simlens/simlens/internal/services"
	"github.com/simlens/simlens/internal/source"
	"github.com/simlens/simlens/internal/utils"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, session *source.Session, cfg config.Config) *handlers.Handler {
	analysis := services.NewAnalysisService(logger, session, cfg.Analysis)
	export := services.NewExportService(logger, session, cfg.Export.Dir)
	h := handlers.New(logger, session, analysis, export)

	// Global middlewares
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders: "Content-Disposition,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)
	v1 := app.Group("/v1", authMiddleware)

	// Dataset
	v1.Get("/dataset", h.GetDataset)
	v1.Post("/dataset/reload", h.ReloadDataset)
	v1.Get("/columns", h.ListColumns)
	v1.Get("/agents", h.ListAgents)

	// Analysis
	v1.Get("/series", h.Series)
	v1.Get("/summary", h.Summary)
	v1.Get("/histogram", h.Histogram)
	v1.Get("/timeseries", h.TimeSeries)
	v1.Get("/correlation", h.Correlation)
	v1.Get("/anomalies", h.Anomalies)

	// Export
	v1.Get("/export", h.Export)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, session *source.Session, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "simlens",
		DisableStartupMessage: true,
		ReadTimeout:           utils.DefaultRequestTimeout,
		WriteTimeout:          utils.DefaultRequestTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, session, cfg)

	return app
}
