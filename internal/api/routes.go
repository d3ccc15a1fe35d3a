// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/forecast"
	"github.com/demandcast/backend/internal/models"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Cache          *dataset.Cache
	Engine         *forecast.Engine
	DefaultDataset *models.Dataset
	TempDir        string
	DuckOpts       dataset.DuckStoreOptions
	AllowedTypes   string
	AllowDeletion  bool
	Version        string
	Logger         *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Dataset  DatasetHandler
	Forecast ForecastHandler
	Report   ReportHandler
	Meta     MetaHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	resolver := &datasetResolver{cache: deps.Cache, defaultDS: deps.DefaultDataset}
	invalidate := func(key string) {
		if deps.Engine != nil {
			deps.Engine.Invalidate(key)
		}
	}
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Dataset: NewDatasetHandler(deps.Cache, invalidate, deps.TempDir,
			deps.DuckOpts, deps.AllowedTypes, deps.AllowDeletion, deps.Logger),
		Forecast: NewForecastHandler(resolver, deps.Engine, deps.Logger),
		Report:   NewReportHandler(resolver, deps.Engine, deps.Logger),
		Meta:     NewMetaHandler(resolver),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Dataset lifecycle routes
	datasetGroup := e.Group("/api/datasets")
	datasetGroup.POST("", handlers.Dataset.HandleUploadDataset)
	datasetGroup.GET("/:id", handlers.Dataset.HandleGetDataset)
	datasetGroup.DELETE("/:id", handlers.Dataset.HandleDeleteDataset)
	datasetGroup.POST("/:id/keepalive", handlers.Dataset.HandleKeepAlive)

	// Forecast routes
	forecastGroup := e.Group("/api/forecast")
	forecastGroup.POST("", handlers.Forecast.HandleForecast)
	forecastGroup.GET("/series", handlers.Forecast.HandleForecastSeries)
	forecastGroup.GET("/csv", handlers.Report.HandleForecastCSV)
	forecastGroup.GET("/report", handlers.Report.HandleForecastPDF)
	forecastGroup.GET("/all/csv", handlers.Report.HandleAllForecastsCSV)

	// Dashboard and form metadata
	e.GET("/api/dashboard", handlers.Forecast.HandleDashboard)
	e.GET("/api/meta/form", handlers.Meta.HandleFormMeta)
}

// SetupMiddleware configures the custom error handler
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
