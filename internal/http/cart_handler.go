package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serenelion/Earth-Care-Food-Company/internal/catalog"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

type CartHandler struct {
	catalog *catalog.Accessor
}

func NewCartHandler(accessor *catalog.Accessor) *CartHandler {
	return &CartHandler{catalog: accessor}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

// CartResponseDTO is returned by every cart mutation so the client can render
// lines and totals from a single round trip.
type CartResponseDTO struct {
	Lines  []domain.CartLine `json:"lines"`
	Totals domain.Totals     `json:"totals"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, CartResponseDTO{Lines: s.Cart.Lines(), Totals: s.Cart.Totals()})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, ok := h.catalog.Product(r.Context(), req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "product is not in the catalog")
		return
	}

	qty := s.Cart.AddItem(p)
	if qty == 1 {
		s.Toasts.Show(p.Name+" added to your basket", domain.ToastSuccess)
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{Lines: s.Cart.Lines(), Totals: s.Cart.Totals()})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Unknown ids are tolerated as no-ops, mirroring the engine.
	s.Cart.UpdateQuantity(productID, req.Delta)
	respondJSON(w, http.StatusOK, CartResponseDTO{Lines: s.Cart.Lines(), Totals: s.Cart.Totals()})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.RemoveItem(chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, CartResponseDTO{Lines: s.Cart.Lines(), Totals: s.Cart.Totals()})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.Clear()
	respondJSON(w, http.StatusOK, CartResponseDTO{Lines: s.Cart.Lines(), Totals: s.Cart.Totals()})
}
