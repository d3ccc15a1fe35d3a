// duckstore_test.go - Tests for DuckDB-backed observation storage
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/demandcast/backend/internal/models"
)

func createTestStore(t *testing.T) (*DuckStore, *models.Dataset) {
	t.Helper()
	tempDir := t.TempDir()

	rows := make([]models.Row, 0, 20)
	for d := 1; d <= 10; d++ {
		date := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		rows = append(rows,
			models.Row{Date: date, Product: "Widget A", Demand: float64(10 + d), Inventory: 100},
			models.Row{Date: date, Product: "Widget B", Demand: float64(20 + d), Inventory: 200},
		)
	}
	ds := &models.Dataset{Rows: rows}

	store, err := NewDuckStore(tempDir, "test_store", ds, DefaultDuckStoreOptions())
	if err != nil {
		t.Fatalf("Failed to create DuckStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, ds
}

func TestNewDuckStore(t *testing.T) {
	store, ds := createTestStore(t)

	if store.Len() != len(ds.Rows) {
		t.Errorf("Len() = %d, want %d", store.Len(), len(ds.Rows))
	}
	if _, err := os.Stat(store.dbPath); err != nil {
		t.Errorf("expected database file at %s: %v", store.dbPath, err)
	}
}

func TestDuckStore_Products(t *testing.T) {
	store, _ := createTestStore(t)

	products, err := store.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if len(products) != 2 || products[0] != "Widget A" || products[1] != "Widget B" {
		t.Errorf("Products() = %v, want [Widget A, Widget B]", products)
	}
}

func TestDuckStore_Series(t *testing.T) {
	store, _ := createTestStore(t)

	series, err := store.Series(context.Background(), "Widget A")
	if err != nil {
		t.Fatalf("Series() error: %v", err)
	}
	if len(series) != 10 {
		t.Fatalf("Series() returned %d rows, want 10", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Date.Before(series[i-1].Date) {
			t.Errorf("series not in date order at index %d", i)
		}
	}
	if series[0].Demand != 11 {
		t.Errorf("first demand = %v, want 11", series[0].Demand)
	}
}

func TestDuckStore_Preview(t *testing.T) {
	store, _ := createTestStore(t)

	preview, err := store.Preview(context.Background(), 3)
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	if len(preview) != 3 {
		t.Fatalf("Preview() returned %d rows, want 3", len(preview))
	}
	if preview[0][1] != "Widget A" {
		t.Errorf("preview not ordered by product: %v", preview[0])
	}
}

func TestDuckStore_CloseRemovesFile(t *testing.T) {
	tempDir := t.TempDir()
	ds := &models.Dataset{Rows: []models.Row{{
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Product: "Widget", Demand: 1, Inventory: 1,
	}}}

	store, err := NewDuckStore(tempDir, "close_test", ds, DefaultDuckStoreOptions())
	if err != nil {
		t.Fatalf("Failed to create DuckStore: %v", err)
	}

	dbPath := filepath.Join(tempDir, "dataset_close_test.duckdb")
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Errorf("expected database file to be removed, stat err = %v", err)
	}
}
