package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutStep string

const (
	StepCart    CheckoutStep = "cart"
	StepDetails CheckoutStep = "details"
	StepSuccess CheckoutStep = "success"
)

func (s CheckoutStep) IsTerminal() bool {
	return s == StepSuccess
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}

// CheckoutDetails carries the contact, shipping and payment fields captured on
// the details step. The storefront treats them as opaque pass-through payload;
// only presence matters here.
type CheckoutDetails struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVC    string `json:"card_cvc"`
}

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"product_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is the full cart state captured at submission time, plus the reference
// shown on the confirmation step.
type Order struct {
	Reference string          `json:"reference"`
	Lines     []OrderLine     `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	PlacedAt  time.Time       `json:"placed_at"`
}
