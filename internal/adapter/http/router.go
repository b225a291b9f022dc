package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/snap2code/creditledger/internal/adapter/http/handler"
	"github.com/snap2code/creditledger/internal/adapter/http/middleware"
	"github.com/snap2code/creditledger/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	CreditHandler     *handler.CreditHandler
	CheckoutHandler   *handler.CheckoutHandler
	PromoHandler      *handler.PromoHandler
	ConversionHandler *handler.ConversionHandler
	WebhookHandler    *handler.WebhookHandler
	HealthHandler     *handler.HealthHandler
	JWTManager        *auth.JWTManager
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery(cfg.Logger))

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Provider webhooks are authenticated by signature, not by JWT.
	r.Post("/payment/webhook", cfg.WebhookHandler.Receive)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			r.Get("/{id}/entries", cfg.AccountHandler.ListEntries)
			r.Get("/{id}/orders", cfg.CheckoutHandler.ListByAccount)
		})

		// Credits
		r.Post("/credits/deduct", cfg.CreditHandler.Deduct)

		// Packages and checkout
		r.Get("/packages", cfg.CheckoutHandler.ListPackages)
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.CheckoutHandler.Create)
			r.Get("/{id}", cfg.CheckoutHandler.Get)
			r.Post("/{id}/cancel", cfg.CheckoutHandler.Cancel)
		})

		// Promo codes
		r.Post("/promo/redeem", cfg.PromoHandler.Redeem)

		// Conversions
		r.Route("/conversions", func(r chi.Router) {
			r.Post("/", cfg.ConversionHandler.Start)
			r.Get("/{id}", cfg.ConversionHandler.Get)
		})

		// Administrative operations
		r.Route("/admin", func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				r.Use(middleware.RequireAdmin)
			}

			r.Post("/credits/adjust", cfg.CreditHandler.Adjust)
			r.Post("/orders/{id}/refund", cfg.CheckoutHandler.Refund)
			r.Post("/promo", cfg.PromoHandler.Create)
			r.Get("/accounts/{id}/reconcile", cfg.CreditHandler.Reconcile)
		})
	})

	return r
}
