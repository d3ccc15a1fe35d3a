// resolver_test.go - Tests for dataset resolution and read paths
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/models"
)

func TestResolver_DefaultDataset(t *testing.T) {
	resolver, _ := newTestResolver(t, seasonalDataset("Widget A"))

	res, err := resolver.resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.key != defaultDatasetKey {
		t.Errorf("key = %q, want %q", res.key, defaultDatasetKey)
	}
	if res.source != SourceDefault {
		t.Errorf("source = %q, want %q", res.source, SourceDefault)
	}
	if res.store != nil {
		t.Error("default dataset should not carry a store")
	}
}

func TestResolver_Errors(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)

	_, err := resolver.resolve("")
	assertAPIError(t, err, http.StatusBadRequest, "BAD_REQUEST")

	resolver, _ = newTestResolver(t, seasonalDataset("Widget A"))
	_, err = resolver.resolve("no-such-id")
	assertAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

// Uploaded datasets with a materialized store must answer product and
// series reads from the store, not the in-memory copy.
func TestResolver_ReadsPreferStore(t *testing.T) {
	resolver, cache := newTestResolver(t, nil)

	full := seasonalDataset("Widget A", "Widget B")
	store, err := dataset.NewDuckStore(t.TempDir(), "resolver_reads", full, dataset.DefaultDuckStoreOptions())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	// The in-memory copy is missing Widget B, so any read that finds it
	// must have gone through the store. The cache closes the store.
	partial := seasonalDataset("Widget A")
	id := cache.Put(models.DatasetInfo{Name: "full.csv"}, partial, store)

	res, err := resolver.resolve(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.store == nil {
		t.Fatal("expected resolved dataset to carry the store")
	}

	ctx := context.Background()
	products, err := res.products(ctx)
	if err != nil {
		t.Fatalf("products() error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("products() = %v, want both products from the store", products)
	}

	rows, err := res.series(ctx, "Widget B")
	if err != nil {
		t.Fatalf("series() error: %v", err)
	}
	if len(rows) != 28 {
		t.Errorf("series(Widget B) returned %d rows, want 28", len(rows))
	}
}

func TestResolver_ReadsFallBackWithoutStore(t *testing.T) {
	resolver, cache := newTestResolver(t, nil)

	ds := seasonalDataset("Widget A")
	id := cache.Put(models.DatasetInfo{Name: "mem.csv"}, ds, nil)

	res, err := resolver.resolve(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	products, err := res.products(ctx)
	if err != nil {
		t.Fatalf("products() error: %v", err)
	}
	if len(products) != 1 || products[0] != "Widget A" {
		t.Errorf("products() = %v, want [Widget A]", products)
	}

	rows, err := res.series(ctx, "Widget A")
	if err != nil {
		t.Fatalf("series() error: %v", err)
	}
	if len(rows) != 28 {
		t.Errorf("series(Widget A) returned %d rows, want 28", len(rows))
	}

	missing, err := res.series(ctx, "Widget Z")
	if err != nil {
		t.Fatalf("series() error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("series(Widget Z) returned %d rows, want none", len(missing))
	}
}
