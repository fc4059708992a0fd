package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/serenelion/Earth-Care-Food-Company/internal/domain"
)

var (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(50)

	// FlatShippingFee applies to every order at or below the threshold.
	FlatShippingFee = decimal.NewFromInt(10)
)

// Engine owns the in-memory cart for one page session. Lines keep the order in
// which their products were first added; quantity updates never reorder them.
// All operations are total: unknown ids are tolerated as no-ops.
type Engine struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewEngine() *Engine {
	return &Engine{}
}

// AddItem merges by product id: an existing line gains one unit, otherwise a
// new line with quantity 1 is appended. Returns the line's new quantity.
func (e *Engine) AddItem(p domain.Product) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID == p.ID {
			e.lines[i].Quantity++
			return e.lines[i].Quantity
		}
	}

	e.lines = append(e.lines, domain.CartLine{Product: p, Quantity: 1})
	return 1
}

// UpdateQuantity applies a delta to the line with the given id, clamped at
// zero. A line reaching zero is removed. Absent ids are a no-op.
func (e *Engine) UpdateQuantity(id string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID != id {
			continue
		}
		q := e.lines[i].Quantity + delta
		if q <= 0 {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
		} else {
			e.lines[i].Quantity = q
		}
		return
	}
}

// RemoveItem drops the line with the given id if present.
func (e *Engine) RemoveItem(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID == id {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
}

// Lines returns a copy of the current lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Count is the sum of quantities across all lines.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var n int
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

// Totals recomputes the aggregate view from the current lines.
func (e *Engine) Totals() domain.Totals {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := domain.Totals{
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
	}
	for _, l := range e.lines {
		t.Count += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if !t.Subtotal.GreaterThan(FreeShippingThreshold) {
		t.Shipping = FlatShippingFee
	}
	t.Total = t.Subtotal.Add(t.Shipping)
	return t
}

// Snapshot captures the current lines and totals for checkout submission.
func (e *Engine) Snapshot() []domain.OrderLine {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.OrderLine, 0, len(e.lines))
	for _, l := range e.lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		out = append(out, domain.OrderLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
			Subtotal:  l.Product.Price.Mul(qty),
		})
	}
	return out
}
