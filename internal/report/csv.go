// Package report renders forecast results as downloadable CSV and PDF
// documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/demandcast/backend/internal/models"
)

// WriteForecastCSV writes one product's historical and forecasted demand
// as Date,Type,Value rows.
func WriteForecastCSV(w io.Writer, result *models.ForecastResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Type", "Value"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, date := range result.HistoricalDates {
		value := strconv.FormatFloat(result.HistoricalValues[i], 'f', -1, 64)
		if err := cw.Write([]string{date, "Historical", value}); err != nil {
			return fmt.Errorf("writing historical row: %w", err)
		}
	}
	for i, date := range result.ForecastDates {
		if err := cw.Write([]string{date, "Forecast", strconv.Itoa(result.ForecastValues[i])}); err != nil {
			return fmt.Errorf("writing forecast row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteAllForecastsCSV writes every product's forecast as
// Date,Product,Forecast rows.
func WriteAllForecastsCSV(w io.Writer, results []*models.ForecastResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Product", "Forecast"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, result := range results {
		for i, date := range result.ForecastDates {
			row := []string{date, result.Product, strconv.Itoa(result.ForecastValues[i])}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing forecast row for %s: %w", result.Product, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ForecastCSVName builds the attachment filename for one product.
func ForecastCSVName(product string, now time.Time) string {
	return fmt.Sprintf("%s_forecast_%s.csv", product, now.Format("20060102"))
}

// AllForecastsCSVName builds the attachment filename for the combined export.
func AllForecastsCSVName(now time.Time) string {
	return fmt.Sprintf("all_products_forecast_%s.csv", now.Format("20060102"))
}

// ReportPDFName builds the attachment filename for the PDF report.
func ReportPDFName(product string, now time.Time) string {
	return fmt.Sprintf("%s_forecast_report_%s.pdf", product, now.Format("20060102"))
}
