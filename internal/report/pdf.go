package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/demandcast/backend/internal/models"
)

// forecastRowsPerTable limits forecast table chunks so each fits a page.
const forecastRowsPerTable = 15

// BuildPDF renders a forecast report: title, metadata, executive
// summary, key metrics, the forecast table in page-sized chunks,
// recommendations, and the modeling assumptions.
func BuildPDF(result *models.ForecastResult, datasetSource string, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Demand Forecast Report - %s", result.Product), false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Demand Forecast Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Metadata
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Product: %s", result.Product), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Forecast Period: %d days", result.Horizon), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Report Generated: %s", generatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Data Source: %s", datasetSource), "", 1, "L", false, 0, "")
	drawRule(pdf)

	// Executive summary
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf(
		"The forecast for %s over the next %d days shows an average daily demand of %.2f units with a %s trend. "+
			"Based on this forecast, an order quantity of %d units is recommended with a reorder point of %.2f units.",
		result.Product, result.Horizon, result.MeanForecast(), result.TrendDirection(),
		result.OrderQuantity, result.ReorderPoint)
	pdf.MultiCell(0, 5, summary, "", "L", false)
	pdf.Ln(4)

	// Key metrics table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Key Metrics", "", 1, "L", false, 0, "")
	writeMetricsTable(pdf, result)
	pdf.Ln(6)

	// Forecast data table, chunked across pages
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Forecast Data Table", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf(
		"The following table shows the forecasted demand values for the next %d days:", result.Horizon),
		"", "L", false)
	pdf.Ln(2)
	writeForecastTable(pdf, result)

	// Recommendations
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Recommendations", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	recommendations := []string{
		fmt.Sprintf("1. Inventory Management: Maintain a safety stock of %.2f units to prevent stockouts.",
			result.SafetyStock),
		fmt.Sprintf("2. Order Planning: Place orders of %d units when inventory reaches the reorder point of %.2f units.",
			result.OrderQuantity, result.ReorderPoint),
		fmt.Sprintf("3. Cost Optimization: The estimated total cost for this inventory strategy is $%.2f, "+
			"which balances holding costs and stockout risks.", result.TotalCost),
	}
	for _, rec := range recommendations {
		pdf.MultiCell(0, 5, rec, "", "L", false)
		pdf.Ln(2)
	}

	// Notes and assumptions
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Notes and Assumptions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	notes := []string{
		"- Historical demand patterns will continue to be relevant for future demand.",
		"- The lead time for replenishment is constant.",
		"- A service level of 95% is targeted (5% acceptable stockout risk).",
		"- The forecast does not account for unexpected market disruptions or special events.",
	}
	for _, note := range notes {
		pdf.MultiCell(0, 5, note, "", "L", false)
	}
	pdf.Ln(2)
	pdf.MultiCell(0, 5, "For best results, the forecast should be regularly updated as new data becomes available.",
		"", "L", false)

	// Footer
	pdf.Ln(8)
	drawRule(pdf)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, fmt.Sprintf("Report generated by Demand Forecast on %s",
		generatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func drawRule(pdf *fpdf.Fpdf) {
	pdf.Ln(3)
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	y := pdf.GetY()
	pdf.SetDrawColor(128, 128, 128)
	pdf.Line(left, y, pageW-right, y)
	pdf.Ln(3)
}

func writeMetricsTable(pdf *fpdf.Fpdf, result *models.ForecastResult) {
	type metric struct {
		name, value, description string
	}
	metrics := []metric{
		{"Order Quantity", fmt.Sprintf("%d units", result.OrderQuantity), "Recommended order size for optimal inventory"},
		{"Reorder Point", fmt.Sprintf("%.2f units", result.ReorderPoint), "Inventory level at which to place new orders"},
		{"Safety Stock", fmt.Sprintf("%.2f units", result.SafetyStock), "Buffer stock to prevent stockouts"},
		{"Total Cost", fmt.Sprintf("$%.2f", result.TotalCost), "Estimated inventory holding and stockout costs"},
	}

	colW := []float64{50, 40, 80}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(173, 216, 230)
	pdf.CellFormat(colW[0], 8, "Metric", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[1], 8, "Value", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[2], 8, "Description", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range metrics {
		pdf.CellFormat(colW[0], 7, m.name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, m.value, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 7, m.description, "1", 1, "L", false, 0, "")
	}
}

func writeForecastTable(pdf *fpdf.Fpdf, result *models.ForecastResult) {
	colW := []float64{60, 50}

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(173, 216, 230)
		pdf.CellFormat(colW[0], 8, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "Forecasted Demand", "1", 1, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	writeHeader()
	for i, date := range result.ForecastDates {
		if i > 0 && i%forecastRowsPerTable == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 8, "Forecast Data Table (continued)", "", 1, "L", false, 0, "")
			writeHeader()
		}
		pdf.CellFormat(colW[0], 7, date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 7, fmt.Sprintf("%d", result.ForecastValues[i]), "1", 1, "C", false, 0, "")
	}
}
