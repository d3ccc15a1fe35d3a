package forecast

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/demandcast/backend/internal/models"
)

// DefaultCacheSize bounds the number of memoized forecast results.
const DefaultCacheSize = 50

// MinObservations is the minimum series length required to forecast.
const MinObservations = 10

// Params configures the forecast engine.
type Params struct {
	SeasonalPeriod int            `yaml:"seasonal_period"`
	Planning       PlanningParams `yaml:"planning"`
}

// DefaultParams returns weekly seasonality and default planning costs.
func DefaultParams() Params {
	return Params{
		SeasonalPeriod: DefaultSeasonalPeriod,
		Planning:       DefaultPlanningParams(),
	}
}

// Engine produces demand forecasts with a bounded LRU result cache, so
// repeated queries for the same dataset/product/horizon are served
// without refitting.
type Engine struct {
	params    Params
	cacheSize int
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*list.Element
	lru   *list.List // front = most recently used
}

type cacheEntry struct {
	key    string
	result *models.ForecastResult
}

// NewEngine creates a forecast engine.
func NewEngine(params Params, cacheSize int, logger *slog.Logger) *Engine {
	if params.SeasonalPeriod < 2 {
		params.SeasonalPeriod = DefaultSeasonalPeriod
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		params:    params,
		cacheSize: cacheSize,
		logger:    logger,
		cache:     make(map[string]*list.Element),
		lru:       list.New(),
	}
}

// Forecast fits a seasonal ARIMA model to the product's demand series
// and returns horizon days of predictions plus planning metrics. rows
// must be the product's observations in date order; datasetKey
// identifies the dataset for cache purposes ("default" for the
// built-in dataset).
func (e *Engine) Forecast(ctx context.Context, datasetKey string, rows []models.Row, product string, horizon int) (*models.ForecastResult, error) {
	if product == "" {
		return nil, fmt.Errorf("product must not be empty")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", horizon)
	}

	key := fmt.Sprintf("%s|%s|%d", datasetKey, product, horizon)
	if result, ok := e.cachedResult(key); ok {
		return result, nil
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found for product: %s", product)
	}
	if len(rows) < MinObservations {
		return nil, fmt.Errorf("not enough data points for product %q: need at least %d, got %d",
			product, MinObservations, len(rows))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	series := make([]float64, len(rows))
	for i, r := range rows {
		series[i] = r.Demand
	}

	model := NewSARIMA(e.params.SeasonalPeriod)
	if err := model.Fit(series); err != nil {
		return nil, fmt.Errorf("fitting model for %s: %w", product, err)
	}
	raw, err := model.Forecast(horizon)
	if err != nil {
		return nil, fmt.Errorf("forecasting %s: %w", product, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	predictions := make([]int, horizon)
	for i, v := range raw {
		p := int(math.Round(v))
		if p < 0 || math.IsNaN(v) {
			p = 0
		}
		predictions[i] = p
	}

	lastDate := rows[len(rows)-1].Date
	forecastDates := make([]string, horizon)
	for i := range forecastDates {
		forecastDates[i] = lastDate.AddDate(0, 0, i+1).Format(models.DateLayout)
	}

	historicalDates := make([]string, len(rows))
	historicalValues := make([]float64, len(rows))
	for i, r := range rows {
		historicalDates[i] = r.Date.Format(models.DateLayout)
		historicalValues[i] = r.Demand
	}

	plan := BuildPlan(predictions, rows[len(rows)-1].Inventory, e.params.Planning)

	result := &models.ForecastResult{
		Product:          product,
		Horizon:          horizon,
		OrderQuantity:    plan.OrderQuantity,
		ReorderPoint:     plan.ReorderPoint,
		SafetyStock:      plan.SafetyStock,
		TotalCost:        plan.TotalCost,
		HistoricalDates:  historicalDates,
		HistoricalValues: historicalValues,
		ForecastDates:    forecastDates,
		ForecastValues:   predictions,
	}

	e.storeResult(key, result)
	e.logger.Info("forecast completed",
		"product", product,
		"horizon", horizon,
		"observations", len(rows),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return result, nil
}

// Invalidate drops every cached result for the given dataset key. Called
// when a dataset is deleted or replaced.
func (e *Engine) Invalidate(datasetKey string) {
	prefix := datasetKey + "|"
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, elem := range e.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			e.lru.Remove(elem)
			delete(e.cache, key)
		}
	}
}

func (e *Engine) cachedResult(key string) (*models.ForecastResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	elem, ok := e.cache[key]
	if !ok {
		return nil, false
	}
	e.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

func (e *Engine) storeResult(key string, result *models.ForecastResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if elem, ok := e.cache[key]; ok {
		elem.Value.(*cacheEntry).result = result
		e.lru.MoveToFront(elem)
		return
	}
	elem := e.lru.PushFront(&cacheEntry{key: key, result: result})
	e.cache[key] = elem
	for e.lru.Len() > e.cacheSize {
		oldest := e.lru.Back()
		e.lru.Remove(oldest)
		delete(e.cache, oldest.Value.(*cacheEntry).key)
	}
}
