package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/cart"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrProcessing = errors.New("checkout is already processing")
	ErrWrongStep  = errors.New("operation not valid for current step")
)

// Notifier is the toast sink the sequencer reports through.
type Notifier interface {
	Show(message string, kind domain.ToastType)
}

// CaptureFunc performs the actual order capture. The default is a fixed-delay
// simulated capture; a real integration passes a function that calls the
// backend checkout endpoint and returns its error.
type CaptureFunc func(ctx context.Context, order *domain.Order, details domain.CheckoutDetails) error

// SimulatedCapture waits out the given delay and always succeeds. It honors
// context cancellation so an abandoned submission does not leak.
func SimulatedCapture(delay time.Duration) CaptureFunc {
	return func(ctx context.Context, _ *domain.Order, _ domain.CheckoutDetails) error {
		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// BackendCapture submits the captured cart to the brand backend's checkout
// endpoint. Any backend error keeps the sequencer in the details step.
func BackendCapture(brand *backend.Client) CaptureFunc {
	return func(ctx context.Context, order *domain.Order, details domain.CheckoutDetails) error {
		_, err := brand.CreateCheckoutSession(ctx, backend.CheckoutPayload{
			Items:    order.Lines,
			Subtotal: order.Subtotal,
			Shipping: order.Shipping,
			Total:    order.Total,
			Details:  details,
		})
		return err
	}
}

// Sequencer walks one page session's checkout through cart -> details ->
// success. Opening the panel after a success re-initializes to cart; closing
// it never changes the step.
type Sequencer struct {
	mu         sync.Mutex
	step       domain.CheckoutStep
	processing bool
	lastOrder  *domain.Order

	cart    *cart.Engine
	notify  Notifier
	capture CaptureFunc
	log     *logrus.Logger
}

func NewSequencer(engine *cart.Engine, notify Notifier, capture CaptureFunc, log *logrus.Logger) *Sequencer {
	return &Sequencer{
		step:    domain.StepCart,
		cart:    engine,
		notify:  notify,
		capture: capture,
		log:     log,
	}
}

// Open marks the panel opened. A prior success resets to the cart step so the
// confirmation is never resumed.
func (s *Sequencer) Open() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step.IsTerminal() {
		s.step = domain.StepCart
	}
	return s.step
}

// Close hides the panel. State is left as-is.
func (s *Sequencer) Close() {}

func (s *Sequencer) Step() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Sequencer) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// LastOrder returns the confirmation produced by the most recent successful
// submission, if any.
func (s *Sequencer) LastOrder() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastOrder == nil {
		return nil
	}
	o := *s.lastOrder
	return &o
}

// BeginDetails advances cart -> details. An empty cart may not proceed.
func (s *Sequencer) BeginDetails() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != domain.StepCart {
		return ErrWrongStep
	}
	if s.cart.Count() == 0 {
		return ErrEmptyCart
	}
	s.step = domain.StepDetails
	return nil
}

// Back returns details -> cart. Captured fields are not retained.
func (s *Sequencer) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != domain.StepDetails {
		return ErrWrongStep
	}
	s.step = domain.StepCart
	return nil
}

// Submit runs the capture for the current cart. While a capture is in flight
// further submissions are rejected with ErrProcessing. On success the cart is
// cleared, a success toast fires and the step becomes success; on failure the
// step stays at details with an error toast.
func (s *Sequencer) Submit(ctx context.Context, details domain.CheckoutDetails) (*domain.Order, error) {
	s.mu.Lock()
	if s.step != domain.StepDetails {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	if s.processing {
		s.mu.Unlock()
		return nil, ErrProcessing
	}
	s.processing = true

	totals := s.cart.Totals()
	order := &domain.Order{
		Reference: orderReference(),
		Lines:     s.cart.Snapshot(),
		Subtotal:  totals.Subtotal,
		Shipping:  totals.Shipping,
		Total:     totals.Total,
		PlacedAt:  time.Now(),
	}
	s.mu.Unlock()

	err := s.capture(ctx, order, details)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false

	if err != nil {
		s.log.WithError(err).WithField("order_ref", order.Reference).Error("order capture failed")
		s.notify.Show("We couldn't place your order. Please try again.", domain.ToastError)
		return nil, err
	}

	s.cart.Clear()
	s.step = domain.StepSuccess
	s.lastOrder = order
	s.notify.Show("Order placed successfully!", domain.ToastSuccess)
	return order, nil
}

func orderReference() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "EC-" + strings.ToUpper(suffix)
}
