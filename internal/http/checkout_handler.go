package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/checkout"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

type CheckoutHandler struct {
	brand *backend.Client
}

func NewCheckoutHandler(brand *backend.Client) *CheckoutHandler {
	return &CheckoutHandler{brand: brand}
}

type CheckoutStateDTO struct {
	Step       domain.CheckoutStep `json:"step"`
	Processing bool                `json:"processing"`
	Order      *domain.Order       `json:"order,omitempty"`
}

func (h *CheckoutHandler) state(s *checkout.Sequencer) CheckoutStateDTO {
	return CheckoutStateDTO{Step: s.Step(), Processing: s.Processing(), Order: s.LastOrder()}
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.state(s.Checkout))
}

// Open reports the step the reopened panel should show; a prior success is
// reset to the cart step.
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Checkout.Open()
	respondJSON(w, http.StatusOK, h.state(s.Checkout))
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Checkout.Close()
	respondJSON(w, http.StatusOK, h.state(s.Checkout))
}

func (h *CheckoutHandler) BeginDetails(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := s.Checkout.BeginDetails(); err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", "cannot checkout an empty cart")
		default:
			respondError(w, http.StatusConflict, "invalid_step", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, h.state(s.Checkout))
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := s.Checkout.Back(); err != nil {
		respondError(w, http.StatusConflict, "invalid_step", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.state(s.Checkout))
}

// PaymentConfig proxies the payment provider's public bootstrap config.
func (h *CheckoutHandler) PaymentConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.brand.PaymentConfig(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "payment_config_unavailable", "payment provider config unavailable")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var details domain.CheckoutDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := s.Checkout.Submit(r.Context(), details)
	switch {
	case errors.Is(err, checkout.ErrProcessing):
		// A capture is already running; the duplicate is ignored, not failed.
		respondJSON(w, http.StatusAccepted, h.state(s.Checkout))
		return
	case errors.Is(err, checkout.ErrWrongStep):
		respondError(w, http.StatusConflict, "invalid_step", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "capture_failed", "order could not be placed")
		return
	}

	respondJSON(w, http.StatusOK, CheckoutStateDTO{
		Step:       s.Checkout.Step(),
		Processing: s.Checkout.Processing(),
		Order:      order,
	})
}
