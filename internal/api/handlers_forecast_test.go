// handlers_forecast_test.go - Tests for forecast generation handlers
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/demandcast/backend/internal/models"
)

func newForecastTestHandler(t *testing.T) ForecastHandler {
	t.Helper()
	resolver, _ := newTestResolver(t, seasonalDataset("Widget A", "Widget B"))
	return NewForecastHandler(resolver, newTestEngine(), testLogger())
}

func postForecast(t *testing.T, h ForecastHandler, payload string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/forecast", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h.HandleForecast(c)
}

func TestForecastHandler_HandleForecast(t *testing.T) {
	h := newForecastTestHandler(t)

	rec, err := postForecast(t, h, `{"product":"Widget A","days":14}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		models.ForecastResult
		DatasetSource    string `json:"datasetSource"`
		ProcessingTimeMs int64  `json:"processingTimeMs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.DatasetSource != SourceDefault {
		t.Errorf("expected source %q, got %q", SourceDefault, resp.DatasetSource)
	}
	if len(resp.ForecastValues) != 14 {
		t.Errorf("expected 14 forecast values, got %d", len(resp.ForecastValues))
	}
	for i, v := range resp.ForecastValues {
		if v < 0 {
			t.Errorf("forecast[%d] = %d, want non-negative", i, v)
		}
	}
}

func TestForecastHandler_FormGuard(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errCode string
	}{
		{"empty product", `{"product":"","days":30}`, "VALIDATION_ERROR"},
		{"whitespace product", `{"product":"   ","days":30}`, "VALIDATION_ERROR"},
		{"zero days", `{"product":"Widget A","days":0}`, "VALIDATION_ERROR"},
		{"days above range", `{"product":"Widget A","days":91}`, "VALIDATION_ERROR"},
		{"non-numeric days", `{"product":"Widget A","days":"soon"}`, "BAD_REQUEST"},
	}

	h := newForecastTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := postForecast(t, h, tt.payload)
			assertAPIError(t, err, http.StatusBadRequest, tt.errCode)
		})
	}

	t.Run("boundary days accepted", func(t *testing.T) {
		for _, days := range []int{MinForecastDays, MaxForecastDays} {
			rec, err := postForecast(t, h,
				`{"product":"Widget A","days":`+strconv.Itoa(days)+`}`)
			if err != nil {
				t.Fatalf("days=%d: unexpected error: %v", days, err)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("days=%d: expected 200, got %d", days, rec.Code)
			}
		}
	})
}

func TestForecastHandler_UnknownProduct(t *testing.T) {
	h := newForecastTestHandler(t)
	_, err := postForecast(t, h, `{"product":"No Such Widget","days":30}`)
	assertAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestForecastHandler_NoDefaultDataset(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	h := NewForecastHandler(resolver, newTestEngine(), testLogger())

	_, err := postForecast(t, h, `{"product":"Widget A","days":30}`)
	assertAPIError(t, err, http.StatusBadRequest, "BAD_REQUEST")
}

func TestForecastHandler_UploadedDataset(t *testing.T) {
	resolver, cache := newTestResolver(t, nil)
	id := cache.Put(models.DatasetInfo{Name: "sales.csv"}, seasonalDataset("Gadget"), nil)
	h := NewForecastHandler(resolver, newTestEngine(), testLogger())

	rec, err := postForecast(t, h,
		`{"datasetId":"`+id+`","product":"Gadget","days":7}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		DatasetSource string `json:"datasetSource"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.DatasetSource != SourceUploaded {
		t.Errorf("expected source %q, got %q", SourceUploaded, resp.DatasetSource)
	}
}

func TestForecastHandler_HandleForecastSeries(t *testing.T) {
	h := newForecastTestHandler(t)

	e := echo.New()
	q := url.Values{"product": {"Widget A"}, "days": {"10"}}
	req := httptest.NewRequest(http.MethodGet, "/api/forecast/series?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleForecastSeries(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %q", ct)
	}

	var payload struct {
		Product        string `msgpack:"product"`
		ForecastValues []int  `msgpack:"forecastValues"`
	}
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode msgpack payload: %v", err)
	}
	if payload.Product != "Widget A" {
		t.Errorf("expected product Widget A, got %q", payload.Product)
	}
	if len(payload.ForecastValues) != 10 {
		t.Errorf("expected 10 forecast values, got %d", len(payload.ForecastValues))
	}
}

func TestForecastHandler_SeriesRejectsNonNumericDays(t *testing.T) {
	h := newForecastTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast/series?product=Widget+A&days=soon", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleForecastSeries(c)
	assertAPIError(t, err, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestForecastHandler_HandleDashboard(t *testing.T) {
	h := newForecastTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary models.DashboardSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to unmarshal summary: %v", err)
	}
	if len(summary.Products) != 2 {
		t.Fatalf("expected 2 products on the dashboard, got %d", len(summary.Products))
	}
	if summary.TotalForecastedDemand <= 0 {
		t.Errorf("expected positive total demand, got %d", summary.TotalForecastedDemand)
	}
	for _, p := range summary.Products {
		if len(p.ForecastValues) != 30 {
			t.Errorf("product %s: expected 30-day forecast, got %d values", p.Product, len(p.ForecastValues))
		}
	}
}
