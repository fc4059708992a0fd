package http

import (
	"net/http"

	"github.com/serenelion/Earth-Care-Food-Company/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Accessor
}

func NewCatalogHandler(accessor *catalog.Accessor) *CatalogHandler {
	return &CatalogHandler{catalog: accessor}
}

// ListProducts always answers 200; a degraded backend yields an empty list.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Products(r.Context()))
}
