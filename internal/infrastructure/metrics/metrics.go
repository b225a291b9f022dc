package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the credits subsystem.
type Metrics struct {
	// Ledger metrics
	CreditsDeducted prometheus.Counter
	CreditsAdded    prometheus.Counter
	CreditsRefunded prometheus.Counter

	// Order metrics
	OrdersCreated   prometheus.Counter
	OrdersCompleted prometheus.Counter
	OrdersRefunded  prometheus.Counter

	// Webhook metrics
	WebhookEvents *prometheus.CounterVec

	// Conversion metrics
	ConversionsStarted     prometheus.Counter
	ConversionsCompensated prometheus.Counter
	ConversionAttempts     prometheus.Histogram

	// Promo metrics
	PromoRedemptions prometheus.Counter
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		CreditsDeducted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credits_deducted_total",
			Help: "Total credit units deducted for usage",
		}),
		CreditsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credits_added_total",
			Help: "Total credit units granted (purchases, promos, compensations)",
		}),
		CreditsRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credits_refunded_total",
			Help: "Total credit units debited back by refunds",
		}),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total orders created",
		}),
		OrdersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Total orders completed",
		}),
		OrdersRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orders_refunded_total",
			Help: "Total orders refunded",
		}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook events by type and processing result",
		}, []string{"type", "result"}),
		ConversionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conversions_started_total",
			Help: "Total conversions that reserved a credit",
		}),
		ConversionsCompensated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conversions_compensated_total",
			Help: "Total failed conversions whose credit was restored",
		}),
		ConversionAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "conversion_attempts",
			Help:    "Converter attempts used per conversion",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		PromoRedemptions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Total promo code redemptions",
		}),
	}
}
