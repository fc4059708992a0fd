package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as served by the brand backend. The backend may
// serialize prices either as JSON numbers or as decimal strings; decimal.Decimal
// accepts both.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tagline     string          `json:"tagline"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Image       string          `json:"image"`
	Benefits    []string        `json:"benefits"`
}
