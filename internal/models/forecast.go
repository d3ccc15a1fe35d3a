package models

// ForecastResult holds the forecasted series and the inventory planning
// metrics derived from it.
type ForecastResult struct {
	Product          string    `json:"product"`
	Horizon          int       `json:"horizon"`
	OrderQuantity    int       `json:"orderQuantity"`
	ReorderPoint     float64   `json:"reorderPoint"`
	SafetyStock      float64   `json:"safetyStock"`
	TotalCost        float64   `json:"totalCost"`
	HistoricalDates  []string  `json:"historicalDates"`
	HistoricalValues []float64 `json:"historicalValues"`
	ForecastDates    []string  `json:"forecastDates"`
	ForecastValues   []int     `json:"forecastValues"`
}

// TotalForecast returns the sum of all forecasted values.
func (r *ForecastResult) TotalForecast() int {
	total := 0
	for _, v := range r.ForecastValues {
		total += v
	}
	return total
}

// MeanForecast returns the average forecasted demand per day.
func (r *ForecastResult) MeanForecast() float64 {
	if len(r.ForecastValues) == 0 {
		return 0
	}
	return float64(r.TotalForecast()) / float64(len(r.ForecastValues))
}

// TrendDirection classifies the forecast by comparing its last value
// against its first.
func (r *ForecastResult) TrendDirection() string {
	if len(r.ForecastValues) < 2 {
		return "stable"
	}
	delta := r.ForecastValues[len(r.ForecastValues)-1] - r.ForecastValues[0]
	switch {
	case delta > 0:
		return "upward"
	case delta < 0:
		return "downward"
	default:
		return "stable"
	}
}

// ProductForecast pairs a product with its recommended order quantity
// on the dashboard.
type ProductForecast struct {
	Product        string   `json:"product"`
	OrderQuantity  int      `json:"orderQuantity"`
	ForecastDates  []string `json:"forecastDates"`
	ForecastValues []int    `json:"forecastValues"`
}

// DashboardSummary aggregates forecasts across every product in the
// active dataset.
type DashboardSummary struct {
	DatasetSource         string            `json:"datasetSource"`
	TotalForecastedDemand int               `json:"totalForecastedDemand"`
	Products              []ProductForecast `json:"products"`
	Skipped               []string          `json:"skipped,omitempty"`
}
