// handlers_forecast.go - Forecast generation handlers
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/demandcast/backend/internal/forecast"
	"github.com/demandcast/backend/internal/models"
)

// Forecast horizon bounds enforced on every forecast request.
const (
	MinForecastDays = 1
	MaxForecastDays = 90
)

// dashboardHorizon is the fixed horizon used for the combined dashboard
// and the all-products export.
const dashboardHorizon = 30

// ForecastHandlerImpl implements the ForecastHandler interface.
type ForecastHandlerImpl struct {
	resolver *datasetResolver
	engine   *forecast.Engine
	logger   *slog.Logger
}

// NewForecastHandler creates a forecast handler.
func NewForecastHandler(resolver *datasetResolver, engine *forecast.Engine, logger *slog.Logger) ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandlerImpl{resolver: resolver, engine: engine, logger: logger}
}

type forecastRequest struct {
	DatasetID string `json:"datasetId" form:"datasetId" query:"datasetId"`
	Product   string `json:"product" form:"product" query:"product"`
	Days      int    `json:"days" form:"days" query:"days"`
}

// validate applies the form-guard rules: non-empty product, integer
// horizon within [MinForecastDays, MaxForecastDays].
func (r *forecastRequest) validate() error {
	if strings.TrimSpace(r.Product) == "" {
		return NewValidationError("product", "must not be empty")
	}
	if r.Days < MinForecastDays || r.Days > MaxForecastDays {
		return NewValidationError("days",
			"must be between "+strconv.Itoa(MinForecastDays)+" and "+strconv.Itoa(MaxForecastDays))
	}
	return nil
}

type forecastResponse struct {
	*models.ForecastResult
	DatasetSource    string `json:"datasetSource"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// HandleForecast generates a demand forecast for one product.
func (h *ForecastHandlerImpl) HandleForecast(c echo.Context) error {
	var req forecastRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	res, err := h.resolver.resolve(req.DatasetID)
	if err != nil {
		return err
	}
	rows, err := res.series(c.Request().Context(), req.Product)
	if err != nil {
		return NewInternalError("failed to read dataset", err)
	}
	if len(rows) == 0 {
		return NewNotFoundError("product", req.Product)
	}

	start := time.Now()
	result, err := h.engine.Forecast(c.Request().Context(), res.key, rows, req.Product, req.Days)
	if err != nil {
		return NewInternalError("forecast failed", err)
	}

	return c.JSON(http.StatusOK, forecastResponse{
		ForecastResult:   result,
		DatasetSource:    res.source,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// seriesPayload is the compact forecast series representation served to
// the frontend chart via msgpack.
type seriesPayload struct {
	Product          string    `msgpack:"product"`
	HistoricalDates  []string  `msgpack:"historicalDates"`
	HistoricalValues []float64 `msgpack:"historicalValues"`
	ForecastDates    []string  `msgpack:"forecastDates"`
	ForecastValues   []int     `msgpack:"forecastValues"`
	ReorderPoint     float64   `msgpack:"reorderPoint"`
}

// HandleForecastSeries returns the historical and forecasted series in
// msgpack form for efficient chart rendering.
func (h *ForecastHandlerImpl) HandleForecastSeries(c echo.Context) error {
	req, err := queryForecastRequest(c)
	if err != nil {
		return err
	}

	res, err := h.resolver.resolve(req.DatasetID)
	if err != nil {
		return err
	}
	rows, err := res.series(c.Request().Context(), req.Product)
	if err != nil {
		return NewInternalError("failed to read dataset", err)
	}
	if len(rows) == 0 {
		return NewNotFoundError("product", req.Product)
	}

	result, err := h.engine.Forecast(c.Request().Context(), res.key, rows, req.Product, req.Days)
	if err != nil {
		return NewInternalError("forecast failed", err)
	}

	payload, err := msgpack.Marshal(seriesPayload{
		Product:          result.Product,
		HistoricalDates:  result.HistoricalDates,
		HistoricalValues: result.HistoricalValues,
		ForecastDates:    result.ForecastDates,
		ForecastValues:   result.ForecastValues,
		ReorderPoint:     result.ReorderPoint,
	})
	if err != nil {
		return NewInternalError("failed to encode series", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", payload)
}

// HandleDashboard generates 30-day forecasts for every product in the
// active dataset. Products that fail to forecast are reported but do
// not fail the whole dashboard.
func (h *ForecastHandlerImpl) HandleDashboard(c echo.Context) error {
	res, err := h.resolver.resolve(c.QueryParam("datasetId"))
	if err != nil {
		return err
	}

	products, err := res.products(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to read dataset", err)
	}

	summary := models.DashboardSummary{DatasetSource: res.source}
	for _, product := range products {
		rows, err := res.series(c.Request().Context(), product)
		if err == nil {
			var result *models.ForecastResult
			result, err = h.engine.Forecast(c.Request().Context(), res.key, rows, product, dashboardHorizon)
			if err == nil {
				summary.TotalForecastedDemand += result.TotalForecast()
				summary.Products = append(summary.Products, models.ProductForecast{
					Product:        product,
					OrderQuantity:  result.OrderQuantity,
					ForecastDates:  result.ForecastDates,
					ForecastValues: result.ForecastValues,
				})
				continue
			}
		}
		h.logger.Warn("dashboard forecast skipped", "product", product, "error", err)
		summary.Skipped = append(summary.Skipped, product)
	}

	if len(summary.Products) == 0 {
		return NewInternalError("no forecasts could be generated", nil)
	}

	return c.JSON(http.StatusOK, summary)
}

// queryForecastRequest parses and validates forecast parameters from
// query strings (used by GET download/series endpoints).
func queryForecastRequest(c echo.Context) (*forecastRequest, error) {
	daysParam := c.QueryParam("days")
	days, err := strconv.Atoi(daysParam)
	if err != nil {
		return nil, NewValidationError("days", "must be an integer")
	}

	req := &forecastRequest{
		DatasetID: c.QueryParam("datasetId"),
		Product:   c.QueryParam("product"),
		Days:      days,
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return req, nil
}
