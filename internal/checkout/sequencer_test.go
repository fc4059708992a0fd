package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/cart"
	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

type mockNotifier struct {
	mu     sync.Mutex
	toasts []domain.Toast
}

func (m *mockNotifier) Show(message string, kind domain.ToastType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, domain.Toast{Message: message, Type: kind})
}

func (m *mockNotifier) last() *domain.Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) == 0 {
		return nil
	}
	t := m.toasts[len(m.toasts)-1]
	return &t
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupSequencer(t *testing.T, capture CaptureFunc) (*Sequencer, *cart.Engine, *mockNotifier) {
	t.Helper()
	engine := cart.NewEngine()
	notifier := &mockNotifier{}
	if capture == nil {
		capture = SimulatedCapture(10 * time.Millisecond)
	}
	return NewSequencer(engine, notifier, capture, testLogger()), engine, notifier
}

func addYogurt(e *cart.Engine) {
	e.AddItem(domain.Product{ID: "yogurt", Name: "Catskills Greek Yogurt", Price: decimal.RequireFromString("12.00")})
}

func TestSequencer_BeginDetails_EmptyCartBlocked(t *testing.T) {
	s, _, _ := setupSequencer(t, nil)

	err := s.BeginDetails()
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.StepCart, s.Step())
}

func TestSequencer_BeginDetails_WithItems(t *testing.T) {
	s, engine, _ := setupSequencer(t, nil)
	addYogurt(engine)

	require.NoError(t, s.BeginDetails())
	assert.Equal(t, domain.StepDetails, s.Step())
}

func TestSequencer_Back(t *testing.T) {
	s, engine, _ := setupSequencer(t, nil)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	require.NoError(t, s.Back())
	assert.Equal(t, domain.StepCart, s.Step())

	// Back from the cart step is invalid.
	assert.ErrorIs(t, s.Back(), ErrWrongStep)
}

func TestSequencer_Submit_SuccessClearsCartAndAdvances(t *testing.T) {
	s, engine, notifier := setupSequencer(t, nil)
	addYogurt(engine)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	order, err := s.Submit(context.Background(), domain.CheckoutDetails{Email: "jay@endofthelane.farm"})
	require.NoError(t, err)

	assert.Equal(t, domain.StepSuccess, s.Step())
	assert.Empty(t, engine.Lines())
	assert.False(t, s.Processing())

	require.NotNil(t, order)
	assert.True(t, strings.HasPrefix(order.Reference, "EC-"))
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("24.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("34.00")))

	toast := notifier.last()
	require.NotNil(t, toast)
	assert.Equal(t, domain.ToastSuccess, toast.Type)
}

func TestSequencer_Submit_FromCartStepRejected(t *testing.T) {
	s, engine, _ := setupSequencer(t, nil)
	addYogurt(engine)

	_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestSequencer_Submit_DuplicateWhileProcessing(t *testing.T) {
	release := make(chan struct{})
	capture := func(ctx context.Context, _ *domain.Order, _ domain.CheckoutDetails) error {
		<-release
		return nil
	}
	s, engine, _ := setupSequencer(t, capture)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
		assert.NoError(t, err)
	}()

	require.Eventually(t, s.Processing, time.Second, 5*time.Millisecond)

	_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
	assert.ErrorIs(t, err, ErrProcessing)

	close(release)
	wg.Wait()
	assert.Equal(t, domain.StepSuccess, s.Step())
}

func TestSequencer_Submit_CaptureFailureStaysInDetails(t *testing.T) {
	captureErr := errors.New("payment backend unavailable")
	capture := func(ctx context.Context, _ *domain.Order, _ domain.CheckoutDetails) error {
		return captureErr
	}
	s, engine, notifier := setupSequencer(t, capture)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
	require.ErrorIs(t, err, captureErr)

	assert.Equal(t, domain.StepDetails, s.Step())
	assert.NotEmpty(t, engine.Lines(), "cart must survive a failed capture")
	assert.False(t, s.Processing())

	toast := notifier.last()
	require.NotNil(t, toast)
	assert.Equal(t, domain.ToastError, toast.Type)
}

func TestSequencer_Open_ResetsAfterSuccess(t *testing.T) {
	s, engine, _ := setupSequencer(t, nil)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())
	_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
	require.NoError(t, err)
	require.Equal(t, domain.StepSuccess, s.Step())

	got := s.Open()
	assert.Equal(t, domain.StepCart, got)
	assert.Equal(t, domain.StepCart, s.Step())

	// Order stays available for the confirmation view that already rendered.
	assert.NotNil(t, s.LastOrder())
}

func TestSequencer_Open_MidFlowDoesNotReset(t *testing.T) {
	s, engine, _ := setupSequencer(t, nil)
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	assert.Equal(t, domain.StepDetails, s.Open())
}

func TestBackendCapture_PostsCartSnapshot(t *testing.T) {
	var got backend.CheckoutPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/checkout/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"cs_123"}`))
	}))
	t.Cleanup(srv.Close)

	brand := backend.NewClient(srv.URL, time.Second, testLogger())
	s, engine, _ := setupSequencer(t, BackendCapture(brand))
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	order, err := s.Submit(context.Background(), domain.CheckoutDetails{Email: "jay@endofthelane.farm"})
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	assert.Equal(t, "yogurt", got.Items[0].ProductID)
	assert.True(t, got.Total.Equal(order.Total))
	assert.Equal(t, "jay@endofthelane.farm", got.Details.Email)
}

func TestBackendCapture_BackendErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "declined", http.StatusPaymentRequired)
	}))
	t.Cleanup(srv.Close)

	brand := backend.NewClient(srv.URL, time.Second, testLogger())
	s, engine, _ := setupSequencer(t, BackendCapture(brand))
	addYogurt(engine)
	require.NoError(t, s.BeginDetails())

	_, err := s.Submit(context.Background(), domain.CheckoutDetails{})
	require.Error(t, err)
	assert.Equal(t, domain.StepDetails, s.Step())
}

func TestSequencer_SimulatedCapture_HonorsContext(t *testing.T) {
	capture := SimulatedCapture(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := capture(ctx, nil, domain.CheckoutDetails{})
	assert.ErrorIs(t, err, context.Canceled)
}
