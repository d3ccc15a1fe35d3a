// handlers_report.go - Downloadable report handlers
package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/demandcast/backend/internal/forecast"
	"github.com/demandcast/backend/internal/models"
	"github.com/demandcast/backend/internal/report"
)

// ReportHandlerImpl implements the ReportHandler interface.
type ReportHandlerImpl struct {
	resolver *datasetResolver
	engine   *forecast.Engine
	logger   *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(resolver *datasetResolver, engine *forecast.Engine, logger *slog.Logger) ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandlerImpl{resolver: resolver, engine: engine, logger: logger}
}

// HandleForecastCSV streams one product's forecast as a CSV attachment.
func (h *ReportHandlerImpl) HandleForecastCSV(c echo.Context) error {
	result, _, err := h.forecastFromQuery(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteForecastCSV(&buf, result); err != nil {
		return NewInternalError("failed to generate CSV", err)
	}

	setAttachment(c, report.ForecastCSVName(result.Product, time.Now()))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// HandleAllForecastsCSV streams 30-day forecasts for every product as a
// single CSV attachment.
func (h *ReportHandlerImpl) HandleAllForecastsCSV(c echo.Context) error {
	res, err := h.resolver.resolve(c.QueryParam("datasetId"))
	if err != nil {
		return err
	}

	products, err := res.products(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to read dataset", err)
	}

	var results []*models.ForecastResult
	for _, product := range products {
		rows, err := res.series(c.Request().Context(), product)
		if err == nil {
			var result *models.ForecastResult
			result, err = h.engine.Forecast(c.Request().Context(), res.key, rows, product, dashboardHorizon)
			if err == nil {
				results = append(results, result)
				continue
			}
		}
		h.logger.Warn("all-products export skipped product", "product", product, "error", err)
	}
	if len(results) == 0 {
		return NewInternalError("no forecasts could be generated", nil)
	}

	var buf bytes.Buffer
	if err := report.WriteAllForecastsCSV(&buf, results); err != nil {
		return NewInternalError("failed to generate CSV", err)
	}

	setAttachment(c, report.AllForecastsCSVName(time.Now()))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// HandleForecastPDF streams a full PDF report for one product.
func (h *ReportHandlerImpl) HandleForecastPDF(c echo.Context) error {
	result, source, err := h.forecastFromQuery(c)
	if err != nil {
		return err
	}

	pdfBytes, err := report.BuildPDF(result, source, time.Now())
	if err != nil {
		return NewInternalError("failed to generate PDF report", err)
	}

	setAttachment(c, report.ReportPDFName(result.Product, time.Now()))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// forecastFromQuery validates the download query parameters and runs the
// forecast.
func (h *ReportHandlerImpl) forecastFromQuery(c echo.Context) (*models.ForecastResult, string, error) {
	req, err := queryForecastRequest(c)
	if err != nil {
		return nil, "", err
	}

	res, err := h.resolver.resolve(req.DatasetID)
	if err != nil {
		return nil, "", err
	}
	rows, err := res.series(c.Request().Context(), req.Product)
	if err != nil {
		return nil, "", NewInternalError("failed to read dataset", err)
	}
	if len(rows) == 0 {
		return nil, "", NewNotFoundError("product", req.Product)
	}

	result, err := h.engine.Forecast(c.Request().Context(), res.key, rows, req.Product, req.Days)
	if err != nil {
		return nil, "", NewInternalError("forecast failed", err)
	}
	return result, res.source, nil
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
}
