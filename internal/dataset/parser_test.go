// parser_test.go - Tests for CSV dataset parsing and validation
package dataset

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validCSV builds a dataset with the given number of days per product.
func validCSV(products []string, days int) string {
	var b strings.Builder
	b.WriteString("Date,Product,Demand,Inventory\n")
	for _, p := range products {
		for d := 1; d <= days; d++ {
			fmt.Fprintf(&b, "2024-01-%02d,%s,%d,%d\n", d, p, 10+d, 100-d)
		}
	}
	return b.String()
}

func TestParseCSV_Valid(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(validCSV([]string{"Widget A", "Widget B"}, 12)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Widget A", "Widget B"}, ds.Products())
	assert.Len(t, ds.Rows, 24)
	assert.Len(t, ds.Series("Widget A"), 12)
}

func TestParseCSV_HeaderSynonyms(t *testing.T) {
	var b strings.Builder
	b.WriteString("order_date,item_name,units_sold,stock_level\n")
	for d := 1; d <= 10; d++ {
		fmt.Fprintf(&b, "2024-02-%02d,Gadget,%d,%d\n", d, 5+d, 50)
	}

	ds, err := ParseCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget"}, ds.Products())
}

func TestParseCSV_DayFirstDates(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Product,Demand,Inventory\n")
	for d := 1; d <= 10; d++ {
		fmt.Fprintf(&b, "%02d-03-2024,Gadget,%d,50\n", d, 5+d)
	}

	ds, err := ParseCSV(strings.NewReader(b.String()))
	require.NoError(t, err)

	first := ds.Series("Gadget")[0].Date
	assert.Equal(t, "2024-03-01", first.Format("2006-01-02"))
}

func TestParseCSV_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "empty input",
			input:   "",
			wantMsg: "dataset is empty",
		},
		{
			name:    "missing columns",
			input:   "Date,Product\n2024-01-01,Widget\n",
			wantMsg: "missing required columns: Demand, Inventory",
		},
		{
			name:    "header only",
			input:   "Date,Product,Demand,Inventory\n",
			wantMsg: "no data rows",
		},
		{
			name: "missing values",
			input: "Date,Product,Demand,Inventory\n" +
				"2024-01-01,Widget,,5\n" +
				"2024-01-02,Widget,3,\n",
			wantMsg: "missing values: Demand (1 missing), Inventory (1 missing)",
		},
		{
			name: "unparseable dates",
			input: "Date,Product,Demand,Inventory\n" +
				"yesterday,Widget,3,5\n",
			wantMsg: "failed to parse date column",
		},
		{
			name: "non-numeric demand",
			input: "Date,Product,Demand,Inventory\n" +
				"2024-01-01,Widget,lots,5\n",
			wantMsg: "error converting numeric columns",
		},
		{
			name:    "too few points per product",
			input:   validCSV([]string{"Widget A"}, 5),
			wantMsg: "not enough data points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
			assert.Contains(t, vErr.Reason, tt.wantMsg)
		})
	}
}

func TestParseCSV_MixedDateLayoutsRejected(t *testing.T) {
	input := "Date,Product,Demand,Inventory\n" +
		"2024-01-01,Widget,1,5\n" +
		"15/01/2024,Widget,2,5\n"

	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no supported date format matched")
}

func TestPreview(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(validCSV([]string{"Widget A"}, 10)))
	require.NoError(t, err)

	preview := Preview(ds, 3)
	require.Len(t, preview, 3)
	assert.Equal(t, []string{"2024-01-01", "Widget A", "11", "99"}, preview[0])

	// Asking for more rows than exist caps at the dataset size.
	assert.Len(t, Preview(ds, 100), 10)
}
