package leads

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// statusResetAfter is how long a success or error outcome stays visible
// before the form returns to idle.
const statusResetAfter = 5 * time.Second

const (
	invalidEmailMessage = "Please enter a valid email address"
	connectionErrMsg    = "Connection error. Please try again later."
	subscribedMessage   = "Welcome to our community! Check your email for updates."
)

// Subscriber is the backend slice the newsletter form needs.
type Subscriber interface {
	SubscribeNewsletter(ctx context.Context, email, firstName, source string) (string, error)
}

// InquirySink is the backend slice the wholesale form needs.
type InquirySink interface {
	SubmitWholesaleInquiry(ctx context.Context, inquiry backend.WholesaleInquiry) (string, error)
}

// form carries the shared idle/loading/success/error machinery. Outcomes
// auto-reset to idle after a fixed window, timer-scoped like toasts.
type form struct {
	mu      sync.Mutex
	status  Status
	message string
	timer   *time.Timer
	closed  bool
}

func (f *form) state() (Status, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == "" {
		return StatusIdle, ""
	}
	return f.status, f.message
}

// begin flips to loading unless a submission is already running.
func (f *form) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.status == StatusLoading {
		return false
	}
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.status = StatusLoading
	f.message = ""
	return true
}

// finish records the outcome and schedules the reset to idle.
func (f *form) finish(status Status, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.status = status
	f.message = message
	f.timer = time.AfterFunc(statusResetAfter, f.reset)
}

func (f *form) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusLoading {
		return
	}
	f.status = StatusIdle
	f.message = ""
	f.timer = nil
}

func (f *form) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Newsletter captures an email address and submits it to the newsletter list.
type Newsletter struct {
	form
	backend Subscriber
	log     *logrus.Logger
}

func NewNewsletter(backend Subscriber, log *logrus.Logger) *Newsletter {
	return &Newsletter{backend: backend, log: log}
}

// Submit validates minimally (presence and an @), then forwards the address.
// The returned status and message mirror what State reports.
func (n *Newsletter) Submit(ctx context.Context, email, firstName string) (Status, string) {
	if st, msg := n.state(); st == StatusLoading {
		return st, msg
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		n.finish(StatusError, invalidEmailMessage)
		return n.state()
	}

	if !n.begin() {
		return n.state()
	}

	msg, err := n.backend.SubscribeNewsletter(ctx, email, firstName, "website")
	if err != nil {
		n.log.WithError(err).Warn("newsletter subscription failed")
		n.finish(StatusError, connectionErrMsg)
		return n.state()
	}
	if msg == "" {
		msg = subscribedMessage
	}
	n.finish(StatusSuccess, msg)
	return n.state()
}

func (n *Newsletter) State() (Status, string) { return n.state() }
func (n *Newsletter) Close()                  { n.close() }

// Wholesale captures the business fields of a wholesale inquiry.
type Wholesale struct {
	form
	backend InquirySink
	log     *logrus.Logger
}

func NewWholesale(backend InquirySink, log *logrus.Logger) *Wholesale {
	return &Wholesale{backend: backend, log: log}
}

func (w *Wholesale) Submit(ctx context.Context, inquiry backend.WholesaleInquiry) (Status, string) {
	if !w.begin() {
		return w.state()
	}

	msg, err := w.backend.SubmitWholesaleInquiry(ctx, inquiry)
	if err != nil {
		w.log.WithError(err).Warn("wholesale inquiry failed")
		w.finish(StatusError, connectionErrMsg)
		return w.state()
	}
	w.finish(StatusSuccess, msg)
	return w.state()
}

func (w *Wholesale) State() (Status, string) { return w.state() }
func (w *Wholesale) Close()                  { w.close() }
