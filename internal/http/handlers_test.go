package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/catalog"
	"github.com/serenelion/Earth-Care-Food-Company/internal/checkout"
	"github.com/serenelion/Earth-Care-Food-Company/internal/session"
)

const catalogBody = `{"results":[
	{"id":"yogurt","name":"Catskills Greek Yogurt","price":"12.00","unit":"32oz"},
	{"id":"kefir","name":"Ancestral Kefir","price":"10.00","unit":"32oz"},
	{"id":"whey","name":"Regenerative Whey Powder","price":"45.00","unit":"2lb"}
]}`

// testServer hosts the storefront API over a stubbed brand backend and keeps
// the page-session token across requests like a browser would.
type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	token  string
	client *http.Client
}

func setupTestServer(t *testing.T, backendHandler http.HandlerFunc) *testServer {
	t.Helper()

	if backendHandler == nil {
		backendHandler = func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/store/products/":
				w.Write([]byte(catalogBody))
			case "/coaching/chat/":
				json.NewEncoder(w).Encode(map[string]string{"message": "Try our kefir."})
			default:
				json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
			}
		}
	}
	backendSrv := httptest.NewServer(backendHandler)
	t.Cleanup(backendSrv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	client := backend.NewClient(backendSrv.URL, 5*time.Second, log)
	accessor := catalog.NewAccessor(client, nil, log)
	mgr := session.NewManager(client, checkout.SimulatedCapture(time.Millisecond), log)
	t.Cleanup(mgr.Close)

	srv := httptest.NewServer(NewRouter(mgr, accessor, client, 10*time.Second))
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv, client: srv.Client()}
}

func (ts *testServer) do(method, path string, body any) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(ts.t, err)
	if ts.token != "" {
		req.Header.Set(SessionHeader, ts.token)
	}

	resp, err := ts.client.Do(req)
	require.NoError(ts.t, err)
	if tok := resp.Header.Get(SessionHeader); tok != "" {
		ts.token = tok
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_Health(t *testing.T) {
	ts := setupTestServer(t, nil)
	resp := ts.do(http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionMiddleware_TokenRoundTrip(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodGet, "/api/v1/cart", nil)
	resp.Body.Close()
	first := ts.token
	require.NotEmpty(t, first)

	resp = ts.do(http.MethodGet, "/api/v1/cart", nil)
	resp.Body.Close()
	assert.Equal(t, first, ts.token, "a presented token must be kept")
}

func TestCatalogEndpoint_ListsProducts(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decode[[]map[string]any](t, resp)
	require.Len(t, products, 3)
	assert.Equal(t, "yogurt", products[0]["id"])
}

func TestCatalogEndpoint_BackendDownYieldsEmptyList(t *testing.T) {
	ts := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	resp := ts.do(http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))
}

func TestCartFlow_AddUpdateRemove(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "yogurt"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cart := decode[CartResponseDTO](t, resp)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Totals.Count)

	// Second add merges into the same line.
	resp = ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "yogurt"})
	cart = decode[CartResponseDTO](t, resp)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	resp = ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "kefir"})
	cart = decode[CartResponseDTO](t, resp)
	require.Len(t, cart.Lines, 2)
	assert.True(t, cart.Totals.Subtotal.Equal(decimal.RequireFromString("34.00")))
	assert.True(t, cart.Totals.Total.Equal(decimal.RequireFromString("44.00")))

	resp = ts.do(http.MethodPatch, "/api/v1/cart/items/kefir", UpdateQuantityRequestDTO{Delta: -1})
	cart = decode[CartResponseDTO](t, resp)
	require.Len(t, cart.Lines, 1)

	resp = ts.do(http.MethodDelete, "/api/v1/cart/items/yogurt", nil)
	cart = decode[CartResponseDTO](t, resp)
	assert.Empty(t, cart.Lines)
}

func TestCartFlow_UnknownProductIs404(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "lard"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutFlow_EmptyCartCannotProceed(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/checkout/details", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckoutFlow_SubmitThenReopenResets(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "whey"})
	resp.Body.Close()

	resp = ts.do(http.MethodPost, "/api/v1/checkout/open", nil)
	state := decode[CheckoutStateDTO](t, resp)
	assert.Equal(t, "cart", string(state.Step))

	resp = ts.do(http.MethodPost, "/api/v1/checkout/details", nil)
	state = decode[CheckoutStateDTO](t, resp)
	require.Equal(t, "details", string(state.Step))

	resp = ts.do(http.MethodPost, "/api/v1/checkout/submit", map[string]string{"email": "jay@endofthelane.farm"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[CheckoutStateDTO](t, resp)
	assert.Equal(t, "success", string(state.Step))
	require.NotNil(t, state.Order)
	assert.NotEmpty(t, state.Order.Reference)

	// Cart was cleared by the successful capture.
	resp = ts.do(http.MethodGet, "/api/v1/cart", nil)
	cart := decode[CartResponseDTO](t, resp)
	assert.Empty(t, cart.Lines)

	// Reopening the panel resets success back to the cart step.
	resp = ts.do(http.MethodPost, "/api/v1/checkout/open", nil)
	state = decode[CheckoutStateDTO](t, resp)
	assert.Equal(t, "cart", string(state.Step))
}

func TestCheckoutPaymentConfig(t *testing.T) {
	ts := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/stripe/config/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"publishable_key": "pk_test_123"})
	})

	resp := ts.do(http.MethodGet, "/api/v1/checkout/payment-config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[map[string]string](t, resp)
	assert.Equal(t, "pk_test_123", cfg["publishable_key"])
}

func TestChatFlow_SendAndTranscript(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/chat", ChatRequestDTO{Message: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	transcript := decode[TranscriptDTO](t, resp)

	require.Len(t, transcript.Turns, 3) // welcome + user + reply
	assert.Equal(t, "hello", transcript.Turns[1].Text)
	assert.Equal(t, "Try our kefir.", transcript.Turns[2].Text)
	assert.NotEmpty(t, transcript.SessionID)

	resp = ts.do(http.MethodGet, "/api/v1/chat/transcript", nil)
	again := decode[TranscriptDTO](t, resp)
	assert.Equal(t, transcript.SessionID, again.SessionID)
	assert.Len(t, again.Turns, 3)
}

func TestChatFlow_BackendFailureFallsBack(t *testing.T) {
	ts := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	resp := ts.do(http.MethodPost, "/api/v1/chat", ChatRequestDTO{Message: "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	transcript := decode[TranscriptDTO](t, resp)

	require.Len(t, transcript.Turns, 3)
	assert.Contains(t, transcript.Turns[2].Text, "trouble connecting")
}

func TestNewsletterEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := ts.do(http.MethodPost, "/api/v1/newsletter", NewsletterRequestDTO{Email: "jay@endofthelane.farm"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[LeadStatusDTO](t, resp)
	assert.Equal(t, "success", string(out.Status))

	resp = ts.do(http.MethodPost, "/api/v1/newsletter", NewsletterRequestDTO{Email: "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestViewportAndToasts(t *testing.T) {
	ts := setupTestServer(t, nil)

	// Empty cart: never visible.
	resp := ts.do(http.MethodPut, "/api/v1/viewport", ViewportRequestDTO{ScrollY: 800})
	out := decode[ViewportResponseDTO](t, resp)
	assert.False(t, out.FloatingCartVisible)

	// Adding to the cart raises a toast and satisfies the visibility gate.
	resp = ts.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "yogurt"})
	resp.Body.Close()

	resp = ts.do(http.MethodPut, "/api/v1/viewport", ViewportRequestDTO{ScrollY: 800})
	out = decode[ViewportResponseDTO](t, resp)
	assert.True(t, out.FloatingCartVisible)

	resp = ts.do(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toast := decode[map[string]string](t, resp)
	assert.Contains(t, toast["message"], "added to your basket")

	resp = ts.do(http.MethodDelete, "/api/v1/notifications", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/api/v1/notifications", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
