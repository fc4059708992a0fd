package domain

import "github.com/shopspring/decimal"

// CartLine pairs a product with a strictly positive quantity. At most one line
// per product id exists in a cart; the cart engine enforces both invariants.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Totals are derived from the current cart lines on every read, never stored.
type Totals struct {
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}
