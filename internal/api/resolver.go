package api

import (
	"context"

	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/models"
)

// Dataset source labels surfaced in responses and reports.
const (
	SourceDefault  = "Default Dataset"
	SourceUploaded = "Uploaded Dataset"
)

// defaultDatasetKey is the forecast cache key for the built-in dataset.
const defaultDatasetKey = "default"

// datasetResolver picks between the built-in dataset and a cached upload.
type datasetResolver struct {
	cache     *dataset.Cache
	defaultDS *models.Dataset
}

// resolved describes the dataset selected for a request. Uploaded
// datasets carry their DuckDB materialization; reads prefer it and fall
// back to the in-memory dataset when no store was created.
type resolved struct {
	ds     *models.Dataset
	store  *dataset.DuckStore
	key    string // forecast cache key
	source string // human-readable source label
}

// resolve returns the dataset for the given ID, falling back to the
// default dataset when the ID is empty. Cache hits refresh the entry's
// last-accessed time.
func (r *datasetResolver) resolve(id string) (*resolved, error) {
	if id == "" {
		if r.defaultDS == nil {
			return nil, NewBadRequestError(
				"no default dataset is configured; upload a dataset first", nil)
		}
		return &resolved{ds: r.defaultDS, key: defaultDatasetKey, source: SourceDefault}, nil
	}

	entry, ok := r.cache.Get(id)
	if !ok {
		return nil, NewNotFoundError("dataset", id)
	}
	return &resolved{ds: entry.Dataset, store: entry.Store, key: id, source: SourceUploaded}, nil
}

// products lists the dataset's products, querying the store when one is
// materialized.
func (r *resolved) products(ctx context.Context) ([]string, error) {
	if r.store != nil {
		return r.store.Products(ctx)
	}
	return r.ds.Products(), nil
}

// series returns one product's observations in date order, querying the
// store when one is materialized. An unknown product yields an empty
// series.
func (r *resolved) series(ctx context.Context, product string) ([]models.Row, error) {
	if r.store != nil {
		return r.store.Series(ctx, product)
	}
	return r.ds.Series(product), nil
}
