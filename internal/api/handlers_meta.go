// handlers_meta.go - Declarative form metadata for the frontend
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MetaHandlerImpl implements the MetaHandler interface.
type MetaHandlerImpl struct {
	resolver *datasetResolver
}

// NewMetaHandler creates a meta handler.
func NewMetaHandler(resolver *datasetResolver) MetaHandler {
	return &MetaHandlerImpl{resolver: resolver}
}

// fieldMeta describes one form field: bounds and tooltip text the
// frontend attaches declaratively.
type fieldMeta struct {
	Min     int    `json:"min,omitempty"`
	Max     int    `json:"max,omitempty"`
	Tooltip string `json:"tooltip"`
}

type formMeta struct {
	DatasetSource string               `json:"datasetSource"`
	Products      []string             `json:"products"`
	Fields        map[string]fieldMeta `json:"fields"`
}

// HandleFormMeta returns the product list for the active dataset plus
// field constraints and tooltip text for the forecast form.
func (h *MetaHandlerImpl) HandleFormMeta(c echo.Context) error {
	meta := formMeta{
		Fields: map[string]fieldMeta{
			"product": {
				Tooltip: "Select the product to forecast demand for",
			},
			"days": {
				Min:     MinForecastDays,
				Max:     MaxForecastDays,
				Tooltip: "Number of days to forecast (1-90)",
			},
			"dataset": {
				Tooltip: "Upload a CSV with Date, Product, Demand and Inventory columns (max 16 MB)",
			},
		},
	}

	datasetID := c.QueryParam("datasetId")
	res, err := h.resolver.resolve(datasetID)
	if err != nil {
		if datasetID != "" {
			// An explicit id that no longer resolves is a real error; the
			// frontend uses it to clear its stale session.
			return err
		}
		// No dataset available yet: serve the field metadata anyway so the
		// upload form still works.
		meta.DatasetSource = ""
		meta.Products = []string{}
		return c.JSON(http.StatusOK, meta)
	}

	products, err := res.products(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to read dataset", err)
	}

	meta.DatasetSource = res.source
	meta.Products = products
	return c.JSON(http.StatusOK, meta)
}
