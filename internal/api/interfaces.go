// interfaces.go - Handler interfaces for the API layer
package api

import (
	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness checks.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DatasetHandler manages uploaded dataset lifecycle.
type DatasetHandler interface {
	HandleUploadDataset(c echo.Context) error
	HandleGetDataset(c echo.Context) error
	HandleDeleteDataset(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
}

// ForecastHandler serves forecast generation endpoints.
type ForecastHandler interface {
	HandleForecast(c echo.Context) error
	HandleForecastSeries(c echo.Context) error
	HandleDashboard(c echo.Context) error
}

// ReportHandler serves downloadable report endpoints.
type ReportHandler interface {
	HandleForecastCSV(c echo.Context) error
	HandleAllForecastsCSV(c echo.Context) error
	HandleForecastPDF(c echo.Context) error
}

// MetaHandler serves declarative form metadata for the frontend.
type MetaHandler interface {
	HandleFormMeta(c echo.Context) error
}
