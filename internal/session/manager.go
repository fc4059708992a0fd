package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/serenelion/Earth-Care-Food-Company/internal/assistant"
	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/cart"
	"github.com/serenelion/Earth-Care-Food-Company/internal/checkout"
	"github.com/serenelion/Earth-Care-Food-Company/internal/leads"
	"github.com/serenelion/Earth-Care-Food-Company/internal/notify"
)

const (
	// idleTTL is how long a page session survives without being touched.
	idleTTL = 30 * time.Minute

	// sweepInterval is how often the background cleanup runs.
	sweepInterval = time.Minute
)

// PageSession owns all storefront state for one page load: the cart, the
// checkout sequencer, the assistant transcript, the toast center and the
// scroll observer. Sessions are never shared between page loads.
type PageSession struct {
	Token      string
	Cart       *cart.Engine
	Checkout   *checkout.Sequencer
	Assistant  *assistant.Session
	Toasts     *notify.Center
	Scroll     *notify.ScrollObserver
	Newsletter *leads.Newsletter
	Wholesale  *leads.Wholesale

	lastSeen time.Time
}

func (p *PageSession) teardown() {
	p.Toasts.Close()
	p.Newsletter.Close()
	p.Wholesale.Close()
}

// Manager hands out page sessions keyed by an opaque token and sweeps idle
// ones in the background.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*PageSession

	backend *backend.Client
	capture checkout.CaptureFunc
	log     *logrus.Logger

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewManager(b *backend.Client, capture checkout.CaptureFunc, log *logrus.Logger) *Manager {
	m := &Manager{
		sessions:  make(map[string]*PageSession),
		backend:   b,
		capture:   capture,
		log:       log,
		stopSweep: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// Get returns the session for the token, creating a fresh one (with a new
// token) when the token is empty or unknown.
func (m *Manager) Get(token string) *PageSession {
	if token != "" {
		m.mu.Lock()
		if s, ok := m.sessions[token]; ok {
			s.lastSeen = time.Now()
			m.mu.Unlock()
			return s
		}
		m.mu.Unlock()
	}

	return m.create()
}

func (m *Manager) create() *PageSession {
	engine := cart.NewEngine()
	toasts := notify.NewCenter()

	s := &PageSession{
		Token:      uuid.NewString(),
		Cart:       engine,
		Checkout:   checkout.NewSequencer(engine, toasts, m.capture, m.log),
		Assistant:  assistant.NewSession(m.backend, m.log),
		Toasts:     toasts,
		Scroll:     notify.NewScrollObserver(engine.Count),
		Newsletter: leads.NewNewsletter(m.backend, m.log),
		Wholesale:  leads.NewWholesale(m.backend, m.log),
		lastSeen:   time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	m.log.WithField("session", s.Token).Debug("page session created")
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopSweep:
			return
		}
	}
}

// sweep drops sessions idle past the TTL, tearing down their timers.
func (m *Manager) sweep() {
	cutoff := time.Now().Add(-idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			s.teardown()
			delete(m.sessions, token)
			m.log.WithField("session", token).Debug("page session expired")
		}
	}
}

// Close stops the sweeper and tears down every live session.
func (m *Manager) Close() {
	close(m.stopSweep)
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		s.teardown()
		delete(m.sessions, token)
	}
}
