// Package dataset parses, validates and caches uploaded demand datasets.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/demandcast/backend/internal/models"
)

// MinPointsPerProduct is the minimum number of observations required to
// forecast a product.
const MinPointsPerProduct = 10

// dateLayouts are tried in order; the first layout that parses every
// date in the column wins.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
}

// ValidationError describes why an uploaded dataset was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func rejectf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// canonicalColumn maps an arbitrary header name onto one of the required
// columns, or returns "" when the header is unrecognized.
func canonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case strings.Contains(h, "product"), strings.Contains(h, "item"):
		return "Product"
	case strings.Contains(h, "demand"), strings.Contains(h, "sales"), strings.Contains(h, "unit"):
		return "Demand"
	case strings.Contains(h, "inventory"), strings.Contains(h, "stock"):
		return "Inventory"
	case strings.Contains(h, "date"):
		return "Date"
	}
	return ""
}

// ParseCSV reads a demand dataset from r and validates it.
//
// Header names are matched case-insensitively against known synonyms
// (product/item, demand/sales/unit, inventory/stock, date). Dates must
// parse consistently with a single layout across the whole column.
// Demand and Inventory must be numeric, no cell may be empty, and every
// product needs at least MinPointsPerProduct observations.
func ParseCSV(r io.Reader) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, rejectf("dataset is empty")
	}
	if err != nil {
		return nil, rejectf("failed to read CSV header: %v", err)
	}

	// Map column index -> canonical name. Rightmost match wins, same as
	// a rename over the original header order.
	cols := make(map[string]int)
	for i, h := range header {
		if name := canonicalColumn(h); name != "" {
			cols[name] = i
		}
	}

	var missing []string
	for _, required := range []string{"Date", "Product", "Demand", "Inventory"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, rejectf("missing required columns: %s", strings.Join(missing, ", "))
	}

	type rawRow struct {
		date      string
		product   string
		demand    string
		inventory string
		line      int
	}

	var raw []rawRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, rejectf("failed to read CSV record at line %d: %v", line, err)
		}
		if len(record) < len(header) {
			return nil, rejectf("line %d has %d fields, expected %d", line, len(record), len(header))
		}
		raw = append(raw, rawRow{
			date:      strings.TrimSpace(record[cols["Date"]]),
			product:   strings.TrimSpace(record[cols["Product"]]),
			demand:    strings.TrimSpace(record[cols["Demand"]]),
			inventory: strings.TrimSpace(record[cols["Inventory"]]),
			line:      line,
		})
	}

	if len(raw) == 0 {
		return nil, rejectf("dataset contains no data rows")
	}

	// Missing value check before any conversion.
	missingCount := map[string]int{}
	for _, rr := range raw {
		if rr.date == "" {
			missingCount["Date"]++
		}
		if rr.product == "" {
			missingCount["Product"]++
		}
		if rr.demand == "" {
			missingCount["Demand"]++
		}
		if rr.inventory == "" {
			missingCount["Inventory"]++
		}
	}
	if len(missingCount) > 0 {
		var parts []string
		for _, col := range []string{"Date", "Product", "Demand", "Inventory"} {
			if n := missingCount[col]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s (%d missing)", col, n))
			}
		}
		return nil, rejectf("dataset contains missing values: %s", strings.Join(parts, ", "))
	}

	layout, err := detectDateLayout(raw, func(rr rawRow) string { return rr.date })
	if err != nil {
		return nil, err
	}

	rows := make([]models.Row, 0, len(raw))
	for _, rr := range raw {
		date, err := time.Parse(layout, rr.date)
		if err != nil {
			return nil, rejectf("failed to parse date %q at line %d", rr.date, rr.line)
		}
		demand, err := strconv.ParseFloat(rr.demand, 64)
		if err != nil {
			return nil, rejectf("error converting numeric columns: Demand %q at line %d", rr.demand, rr.line)
		}
		inventory, err := strconv.ParseFloat(rr.inventory, 64)
		if err != nil {
			return nil, rejectf("error converting numeric columns: Inventory %q at line %d", rr.inventory, rr.line)
		}
		rows = append(rows, models.Row{
			Date:      date,
			Product:   rr.product,
			Demand:    demand,
			Inventory: inventory,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Product != rows[j].Product {
			return rows[i].Product < rows[j].Product
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	ds := &models.Dataset{Rows: rows}

	for _, product := range ds.Products() {
		if n := len(ds.Series(product)); n < MinPointsPerProduct {
			return nil, rejectf("not enough data points for product %q: at least %d required, got %d",
				product, MinPointsPerProduct, n)
		}
	}

	return ds, nil
}

// detectDateLayout finds the first layout that parses every date value.
func detectDateLayout[T any](rows []T, dateOf func(T) string) (string, error) {
	for _, layout := range dateLayouts {
		ok := true
		for _, rr := range rows {
			if _, err := time.Parse(layout, dateOf(rr)); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout, nil
		}
	}
	return "", rejectf("failed to parse date column: no supported date format matched")
}

// Preview renders the first n rows for display, canonical column order.
func Preview(ds *models.Dataset, n int) [][]string {
	if n > len(ds.Rows) {
		n = len(ds.Rows)
	}
	preview := make([][]string, 0, n)
	for _, r := range ds.Rows[:n] {
		preview = append(preview, []string{
			r.Date.Format(models.DateLayout),
			r.Product,
			strconv.FormatFloat(r.Demand, 'f', -1, 64),
			strconv.FormatFloat(r.Inventory, 'f', -1, 64),
		})
	}
	return preview
}
