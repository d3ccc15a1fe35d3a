// handlers_dataset.go - Dataset upload and lifecycle handlers
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/demandcast/backend/internal/config"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/models"
)

// previewRows is how many rows of an uploaded dataset are echoed back.
const previewRows = 5

// DatasetHandlerImpl implements the DatasetHandler interface.
type DatasetHandlerImpl struct {
	cache         *dataset.Cache
	invalidate    func(datasetKey string)
	tempDir       string
	duckOpts      dataset.DuckStoreOptions
	maxBytes      int64
	allowedTypes  []string
	allowDeletion bool
	logger        *slog.Logger
}

// NewDatasetHandler creates a dataset handler. invalidate is called with
// the dataset key whenever a dataset is removed, so dependent caches can
// drop stale results. allowedTypes is a comma-separated extension list
// (".csv" by default).
func NewDatasetHandler(cache *dataset.Cache, invalidate func(string), tempDir string, duckOpts dataset.DuckStoreOptions, allowedTypes string, allowDeletion bool, logger *slog.Logger) DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if invalidate == nil {
		invalidate = func(string) {}
	}
	types := splitExtensions(allowedTypes)
	if len(types) == 0 {
		types = []string{".csv"}
	}
	return &DatasetHandlerImpl{
		cache:         cache,
		invalidate:    invalidate,
		tempDir:       tempDir,
		duckOpts:      duckOpts,
		maxBytes:      config.MaxUploadBytes,
		allowedTypes:  types,
		allowDeletion: allowDeletion,
		logger:        logger,
	}
}

func splitExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

func (h *DatasetHandlerImpl) extensionAllowed(filename string) bool {
	name := strings.ToLower(filename)
	for _, ext := range h.allowedTypes {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// HandleUploadDataset accepts a multipart CSV upload, validates it, and
// registers it in the dataset cache.
func (h *DatasetHandlerImpl) HandleUploadDataset(c echo.Context) error {
	file, err := c.FormFile("dataset")
	if err != nil {
		return NewBadRequestError("no file part in the request", err)
	}
	if file.Filename == "" {
		return NewValidationError("dataset", "no file selected")
	}

	if !h.extensionAllowed(file.Filename) {
		return NewValidationError("dataset",
			fmt.Sprintf("invalid file type %q: please upload a CSV file", file.Filename))
	}
	if file.Size > h.maxBytes {
		return NewPayloadTooLargeError(fmt.Sprintf(
			"file exceeds the %s upload limit: got %s",
			models.FormatBytes(h.maxBytes), models.FormatBytes(file.Size)))
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	ds, err := dataset.ParseCSV(src)
	if err != nil {
		var vErr *dataset.ValidationError
		if errors.As(err, &vErr) {
			return NewDatasetRejectedError(vErr)
		}
		return NewInternalError("failed to process uploaded file", err)
	}

	info := models.DatasetInfo{
		Name:          file.Filename,
		Size:          file.Size,
		SizeLabel:     models.FormatBytes(file.Size),
		RowCount:      len(ds.Rows),
		Products:      ds.Products(),
		PreviewHeader: models.PreviewHeader,
		Preview:       dataset.Preview(ds, previewRows),
	}

	// Materialize into DuckDB for querying. A store failure is not fatal
	// for the upload itself; the in-memory dataset still serves requests.
	store, err := dataset.NewDuckStore(h.tempDir, uuid.New().String(), ds, h.duckOpts)
	if err != nil {
		h.logger.Warn("failed to materialize dataset store", "error", err)
		store = nil
	}

	id := h.cache.Put(info, ds, store)
	info.ID = id

	h.logger.Info("dataset uploaded",
		"dataset", id,
		"name", file.Filename,
		"rows", info.RowCount,
		"products", len(info.Products))

	return c.JSON(http.StatusCreated, info)
}

// HandleGetDataset returns metadata and a preview for a cached dataset.
func (h *DatasetHandlerImpl) HandleGetDataset(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id", "must not be empty")
	}

	entry, ok := h.cache.Get(id)
	if !ok {
		return NewNotFoundError("dataset", id)
	}

	info := entry.Info
	info.ID = id

	// Prefer the materialized store for the preview when available.
	if entry.Store != nil {
		preview, err := entry.Store.Preview(c.Request().Context(), previewRows)
		if err != nil {
			h.logger.Warn("store preview failed", "dataset", id, "error", err)
		} else {
			info.Preview = preview
		}
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteDataset clears an uploaded dataset, reverting requests
// without a dataset ID to the default dataset.
func (h *DatasetHandlerImpl) HandleDeleteDataset(c echo.Context) error {
	if !h.allowDeletion {
		return NewForbiddenError("dataset deletion is disabled")
	}

	id := c.Param("id")
	if id == "" {
		return NewValidationError("id", "must not be empty")
	}

	if !h.cache.Delete(id) {
		return NewNotFoundError("dataset", id)
	}
	h.invalidate(id)

	h.logger.Info("dataset cleared", "dataset", id)
	return c.NoContent(http.StatusNoContent)
}

// HandleKeepAlive refreshes a dataset's last-accessed time so the
// cleanup job does not evict it while a user is still working with it.
func (h *DatasetHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id", "must not be empty")
	}

	if !h.cache.Touch(id) {
		return NewNotFoundError("dataset", id)
	}
	return c.NoContent(http.StatusNoContent)
}
