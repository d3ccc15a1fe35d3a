package forecast

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PlanningParams drive the inventory policy derived from a forecast.
type PlanningParams struct {
	ServiceLevel float64 `yaml:"service_level"`
	LeadTimeDays float64 `yaml:"lead_time_days"`
	HoldingCost  float64 `yaml:"holding_cost"`
	StockoutCost float64 `yaml:"stockout_cost"`
}

// DefaultPlanningParams targets a 95% service level with one day of lead
// time, $0.10/unit holding and $10/unit stockout.
func DefaultPlanningParams() PlanningParams {
	return PlanningParams{
		ServiceLevel: 0.95,
		LeadTimeDays: 1,
		HoldingCost:  0.1,
		StockoutCost: 10,
	}
}

// Plan holds the inventory metrics recommended for one forecast.
type Plan struct {
	OrderQuantity int
	ReorderPoint  float64
	SafetyStock   float64
	TotalCost     float64
}

// BuildPlan derives order quantity, reorder point, safety stock and the
// expected holding/stockout cost from the forecasted demand.
//
// Order quantity is a simplified EOQ: ceil(2*mean + z*std). The reorder
// point covers lead-time demand plus safety stock at the configured
// service level. Money amounts are computed with exact decimals and
// rounded to cents.
func BuildPlan(forecast []int, initialInventory float64, p PlanningParams) Plan {
	values := make([]float64, len(forecast))
	for i, v := range forecast {
		values[i] = float64(v)
	}

	mean := 0.0
	std := 0.0
	if len(values) > 0 {
		mean = stat.Mean(values, nil)
	}
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	z := distuv.UnitNormal.Quantile(p.ServiceLevel)
	lead := p.LeadTimeDays

	orderQty := int(math.Ceil(mean*2 + z*std))
	if orderQty < 0 {
		orderQty = 0
	}
	reorder := mean*lead + z*std*math.Sqrt(lead)
	safety := reorder - mean*lead

	holding := decimal.NewFromFloat(p.HoldingCost).
		Mul(decimal.NewFromFloat(initialInventory).
			Add(decimal.NewFromFloat(0.5).Mul(decimal.NewFromInt(int64(orderQty)))))

	stockoutProb := decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(p.ServiceLevel))
	expectedStockout := stockoutProb.
		Mul(decimal.NewFromFloat(mean)).
		Mul(decimal.NewFromFloat(lead))
	stockout := decimal.NewFromFloat(p.StockoutCost).Mul(expectedStockout)

	total, _ := holding.Add(stockout).Round(2).Float64()

	return Plan{
		OrderQuantity: orderQty,
		ReorderPoint:  round2(reorder),
		SafetyStock:   round2(safety),
		TotalCost:     total,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
