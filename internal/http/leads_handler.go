package http

import (
	"encoding/json"
	"net/http"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/leads"
)

type LeadsHandler struct{}

func NewLeadsHandler() *LeadsHandler {
	return &LeadsHandler{}
}

type NewsletterRequestDTO struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type LeadStatusDTO struct {
	Status  leads.Status `json:"status"`
	Message string       `json:"message"`
}

func (h *LeadsHandler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req NewsletterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, msg := s.Newsletter.Submit(r.Context(), req.Email, req.FirstName)
	respondJSON(w, statusCode(status), LeadStatusDTO{Status: status, Message: msg})
}

func (h *LeadsHandler) SubmitWholesaleInquiry(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req backend.WholesaleInquiry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, msg := s.Wholesale.Submit(r.Context(), req)
	respondJSON(w, statusCode(status), LeadStatusDTO{Status: status, Message: msg})
}

// statusCode keeps the form semantics: outcomes are inline messages, never
// hard failures, so only a validation/backend error maps off 200.
func statusCode(status leads.Status) int {
	switch status {
	case leads.StatusError:
		return http.StatusUnprocessableEntity
	case leads.StatusLoading:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}
