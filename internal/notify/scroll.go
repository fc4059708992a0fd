package notify

import "sync"

// FloatingCartThreshold is the vertical scroll offset (in pixels) past which
// the floating cart affordance may appear.
const FloatingCartThreshold = 400

// ScrollObserver turns a continuous scroll offset into a boolean visibility
// signal for the floating cart button. The button only shows when the page has
// scrolled past the threshold and the cart holds something.
type ScrollObserver struct {
	mu        sync.RWMutex
	offset    int
	cartCount func() int
}

func NewScrollObserver(cartCount func() int) *ScrollObserver {
	return &ScrollObserver{cartCount: cartCount}
}

// Observe records the latest vertical scroll offset.
func (o *ScrollObserver) Observe(offsetY int) {
	o.mu.Lock()
	o.offset = offsetY
	o.mu.Unlock()
}

func (o *ScrollObserver) FloatingCartVisible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.offset > FloatingCartThreshold && o.cartCount() > 0
}
