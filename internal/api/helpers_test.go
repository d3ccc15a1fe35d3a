// helpers_test.go - Shared test fixtures for the API package
package api

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/forecast"
	"github.com/demandcast/backend/internal/models"
)

// testLogger discards output so tests stay quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertAPIError checks that err is an APIError with the given status and code.
func assertAPIError(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != wantStatus {
		t.Errorf("expected status %d, got %d", wantStatus, apiErr.Status)
	}
	if apiErr.Code != wantCode {
		t.Errorf("expected code %s, got %s", wantCode, apiErr.Code)
	}
}

// seasonalDataset builds a dataset with a weekly demand pattern for the
// given products, long enough to forecast.
func seasonalDataset(products ...string) *models.Dataset {
	weekly := []float64{20, 22, 25, 24, 30, 45, 40}
	var rows []models.Row
	for _, p := range products {
		for d := 0; d < 28; d++ {
			rows = append(rows, models.Row{
				Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d),
				Product:   p,
				Demand:    weekly[d%7],
				Inventory: 150,
			})
		}
	}
	return &models.Dataset{Rows: rows}
}

// newTestResolver wires a resolver around a fresh cache and the given
// default dataset.
func newTestResolver(t *testing.T, defaultDS *models.Dataset) (*datasetResolver, *dataset.Cache) {
	t.Helper()
	cache := dataset.NewCache(5, nil)
	t.Cleanup(cache.Close)
	return &datasetResolver{cache: cache, defaultDS: defaultDS}, cache
}

func newTestEngine() *forecast.Engine {
	return forecast.NewEngine(forecast.DefaultParams(), 10, testLogger())
}
