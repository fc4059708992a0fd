package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/serenelion/Earth-Care-Food-Company/internal/assistant"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

type ChatHandler struct{}

func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

type ChatRequestDTO struct {
	Message string `json:"message"`
}

type TranscriptDTO struct {
	SessionID string            `json:"session_id"`
	Loading   bool              `json:"loading"`
	Turns     []domain.ChatTurn `json:"turns"`
}

func (h *ChatHandler) transcript(s *assistant.Session) TranscriptDTO {
	return TranscriptDTO{SessionID: s.ID(), Loading: s.Loading(), Turns: s.Transcript()}
}

func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.transcript(s.Assistant))
}

// SendTurn relays one chat message. A blank message is a silent no-op and a
// turn already in flight yields 409 so the client keeps its send control
// disabled.
func (h *ChatHandler) SendTurn(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.Assistant.SendTurn(r.Context(), req.Message); err != nil {
		if errors.Is(err, assistant.ErrTurnInFlight) {
			respondError(w, http.StatusConflict, "turn_in_flight", "a chat turn is already in flight")
			return
		}
		respondError(w, http.StatusInternalServerError, "chat_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.transcript(s.Assistant))
}

// Rehydrate replaces the transcript from the backend's stored history.
func (h *ChatHandler) Rehydrate(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := s.Assistant.Rehydrate(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "rehydrate_failed", "conversation history unavailable")
		return
	}
	respondJSON(w, http.StatusOK, h.transcript(s.Assistant))
}
