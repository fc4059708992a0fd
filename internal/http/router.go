package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/catalog"
	"github.com/serenelion/Earth-Care-Food-Company/internal/session"
)

// NewRouter assembles the storefront API surface.
func NewRouter(mgr *session.Manager, accessor *catalog.Accessor, brand *backend.Client, requestTimeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(accessor)
	checkoutHandler := NewCheckoutHandler(brand)
	chatHandler := NewChatHandler()
	catalogHandler := NewCatalogHandler(accessor)
	leadsHandler := NewLeadsHandler()
	viewportHandler := NewViewportHandler()

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(mgr))

		r.Get("/products", catalogHandler.ListProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Post("/open", checkoutHandler.Open)
			r.Post("/close", checkoutHandler.Close)
			r.Post("/details", checkoutHandler.BeginDetails)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/submit", checkoutHandler.Submit)
			r.Get("/payment-config", checkoutHandler.PaymentConfig)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.SendTurn)
			r.Get("/transcript", chatHandler.GetTranscript)
			r.Post("/rehydrate", chatHandler.Rehydrate)
		})

		r.Post("/newsletter", leadsHandler.SubscribeNewsletter)
		r.Post("/wholesale", leadsHandler.SubmitWholesaleInquiry)

		r.Put("/viewport", viewportHandler.Observe)
		r.Get("/notifications", viewportHandler.CurrentToast)
		r.Delete("/notifications", viewportHandler.DismissToast)
	})

	return r
}
