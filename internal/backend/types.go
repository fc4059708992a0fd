package backend

import (
	"github.com/shopspring/decimal"

	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

// CheckoutPayload is the cart state shipped to the backend when creating a
// checkout session: the captured lines and totals plus the buyer details.
type CheckoutPayload struct {
	Items    []domain.OrderLine     `json:"items"`
	Subtotal decimal.Decimal        `json:"subtotal"`
	Shipping decimal.Decimal        `json:"shipping"`
	Total    decimal.Decimal        `json:"total"`
	Details  domain.CheckoutDetails `json:"details"`
}

// PaymentConfig is the payment provider's public bootstrap config.
type PaymentConfig struct {
	PublishableKey string `json:"publishable_key"`
}

// WholesaleInquiry carries the business fields from the wholesale form,
// pass-through as captured.
type WholesaleInquiry struct {
	BusinessName           string `json:"business_name"`
	ContactName            string `json:"contact_name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	BusinessType           string `json:"business_type"`
	Location               string `json:"location"`
	Website                string `json:"website"`
	EstimatedMonthlyVolume string `json:"estimated_monthly_volume"`
	Message                string `json:"message"`
}

// HistoryTurn is one transcript entry as returned by the conversation history
// endpoint.
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

type newsletterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Source    string `json:"source"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Email     string `json:"email,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type historyResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []HistoryTurn `json:"messages"`
}
