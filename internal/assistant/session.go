package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

const (
	// welcomeMessage seeds every new transcript; it does not count as a round trip.
	welcomeMessage = "Welcome to Earth Care Food Company! I'm your Gut-Brain Coach. Ask me how to improve your mood with food or about our zero-waste dairy!"

	// fallbackReply is appended whenever the coaching backend cannot answer.
	fallbackReply = "I'm currently having trouble connecting. Please try again later."
)

var ErrTurnInFlight = errors.New("a chat turn is already in flight")

// Relay is the slice of the backend client the session needs.
type Relay interface {
	SendChatTurn(ctx context.Context, sessionID, message string) (string, error)
	ConversationHistory(ctx context.Context, sessionID string) ([]backend.HistoryTurn, error)
}

// Session holds one page load's conversation with the coaching backend: a
// stable session identifier and a monotonically growing transcript. Closing
// and reopening the chat panel reuses the same session.
type Session struct {
	id    string
	relay Relay
	log   *logrus.Logger

	mu      sync.Mutex
	turns   []domain.ChatTurn
	loading bool
}

func NewSession(relay Relay, log *logrus.Logger) *Session {
	return &Session{
		id:    newSessionID(),
		relay: relay,
		log:   log,
		turns: []domain.ChatTurn{{Role: domain.RoleAssistant, Text: welcomeMessage}},
	}
}

// ID is the identifier sent with every turn, letting the backend keep
// server-side conversational context.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Transcript returns a copy of the turns in order.
func (s *Session) Transcript() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SendTurn relays one user message. A blank message is silently ignored. The
// user turn is appended before the round trip; the reply (or the fixed
// fallback on any failure) is appended after, so one accepted turn always
// grows the transcript by exactly two entries.
func (s *Session) SendTurn(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.loading = true
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleUser, Text: text})
	s.mu.Unlock()

	reply, err := s.relay.SendChatTurn(ctx, s.id, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.log.WithError(err).WithField("session_id", s.id).Warn("chat turn failed")
		reply = fallbackReply
	}
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleAssistant, Text: reply})
	return nil
}

// Rehydrate replaces the transcript with the backend's stored conversation.
// On failure the local transcript is left untouched.
func (s *Session) Rehydrate(ctx context.Context) error {
	history, err := s.relay.ConversationHistory(ctx, s.id)
	if err != nil {
		s.log.WithError(err).WithField("session_id", s.id).Warn("conversation rehydration failed")
		return err
	}
	if len(history) == 0 {
		return nil
	}

	turns := make([]domain.ChatTurn, 0, len(history))
	for _, h := range history {
		role := domain.RoleAssistant
		if h.Role == string(domain.RoleUser) {
			role = domain.RoleUser
		}
		turns = append(turns, domain.ChatTurn{Role: role, Text: h.Text})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = turns
	return nil
}

// newSessionID builds a collision-resistant per-page-load identifier. The
// exact shape is not load-bearing; it only has to be unique enough for the
// backend to key conversation history on.
func newSessionID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), suffix)
}
