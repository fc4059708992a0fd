package http

import (
	"encoding/json"
	"net/http"
)

// ViewportHandler feeds the scroll observer and exposes the current toast.
type ViewportHandler struct{}

func NewViewportHandler() *ViewportHandler {
	return &ViewportHandler{}
}

type ViewportRequestDTO struct {
	ScrollY int `json:"scroll_y"`
}

type ViewportResponseDTO struct {
	FloatingCartVisible bool `json:"floating_cart_visible"`
}

func (h *ViewportHandler) Observe(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req ViewportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.Scroll.Observe(req.ScrollY)
	respondJSON(w, http.StatusOK, ViewportResponseDTO{FloatingCartVisible: s.Scroll.FloatingCartVisible()})
}

func (h *ViewportHandler) CurrentToast(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	toast := s.Toasts.Current()
	if toast == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, toast)
}

func (h *ViewportHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Toasts.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}
