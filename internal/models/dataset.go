package models

import (
	"sort"
	"time"
)

// DateLayout is the canonical date format for dataset rows and exports.
const DateLayout = "2006-01-02"

// Row is a single demand observation for a product.
type Row struct {
	Date      time.Time `json:"date"`
	Product   string    `json:"product"`
	Demand    float64   `json:"demand"`
	Inventory float64   `json:"inventory"`
}

// Dataset holds validated demand/inventory observations, sorted by
// product and then date.
type Dataset struct {
	Rows []Row
}

// Products returns the distinct product names in sorted order.
func (d *Dataset) Products() []string {
	seen := make(map[string]struct{})
	var products []string
	for _, r := range d.Rows {
		if _, ok := seen[r.Product]; !ok {
			seen[r.Product] = struct{}{}
			products = append(products, r.Product)
		}
	}
	sort.Strings(products)
	return products
}

// Series returns the demand observations for one product in date order.
func (d *Dataset) Series(product string) []Row {
	var rows []Row
	for _, r := range d.Rows {
		if r.Product == product {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// DatasetInfo is the API representation of a cached dataset.
type DatasetInfo struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Size          int64      `json:"size"`
	SizeLabel     string     `json:"sizeLabel"`
	RowCount      int        `json:"rowCount"`
	Products      []string   `json:"products"`
	PreviewHeader []string   `json:"previewHeader,omitempty"`
	Preview       [][]string `json:"preview,omitempty"`
	UploadedAt    time.Time  `json:"uploadedAt"`
}

// PreviewHeader is the column order used for dataset previews.
var PreviewHeader = []string{"Date", "Product", "Demand", "Inventory"}
