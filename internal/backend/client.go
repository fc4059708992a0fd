package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the external Earth Care brand API. Every operation is a
// single JSON round trip; any non-2xx status or transport failure is returned
// as an error for the caller to absorb.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// ListProducts returns the raw product-listing body. The catalog accessor owns
// normalizing the two response shapes the backend is known to produce.
func (c *Client) ListProducts(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/store/products/", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CreateCheckoutSession submits the captured cart to the backend and returns
// its opaque confirmation payload. Used by the real-backend capture path.
func (c *Client) CreateCheckoutSession(ctx context.Context, payload CheckoutPayload) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/store/checkout/", payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PaymentConfig fetches the payment provider's public bootstrap config.
func (c *Client) PaymentConfig(ctx context.Context) (*PaymentConfig, error) {
	var cfg PaymentConfig
	if err := c.get(ctx, "/store/stripe/config/", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SubscribeNewsletter registers an email with the newsletter list and returns
// the backend's confirmation message.
func (c *Client) SubscribeNewsletter(ctx context.Context, email, firstName, source string) (string, error) {
	if source == "" {
		source = "website"
	}
	req := newsletterRequest{Email: email, FirstName: firstName, Source: source}

	var resp messageResponse
	if err := c.post(ctx, "/newsletter/subscribe/", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SubmitWholesaleInquiry forwards a wholesale lead to the backend.
func (c *Client) SubmitWholesaleInquiry(ctx context.Context, inquiry WholesaleInquiry) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, "/store/wholesale-inquiry/", inquiry, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SendChatTurn relays one user message to the coaching backend and returns the
// assistant's reply text.
func (c *Client) SendChatTurn(ctx context.Context, sessionID, message string) (string, error) {
	req := chatRequest{SessionID: sessionID, Message: message}

	var resp messageResponse
	if err := c.post(ctx, "/coaching/chat/", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ConversationHistory fetches the server-side transcript for a session.
func (c *Client) ConversationHistory(ctx context.Context, sessionID string) ([]HistoryTurn, error) {
	var resp historyResponse
	path := fmt.Sprintf("/coaching/conversation/%s/", url.PathEscape(sessionID))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "build GET %s", path)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "marshal POST %s body", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "build POST %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the log; the caller only needs the status.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.URL.Path,
			"status": resp.StatusCode,
		}).Warn("backend call failed")
		return errors.Errorf("%s %s: unexpected status %d: %s", req.Method, req.URL.Path, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", req.Method, req.URL.Path)
	}
	return nil
}
