package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
	"github.com/snap2code/creditledger/internal/infrastructure/payment"
)

// WebhookUseCase consumes verified payment-provider events and drives order
// transitions. Delivery is at-least-once and may be out of order; the order
// row lock plus the completed-status check make replays harmless, and a
// redis event-id record short-circuits the common duplicate case.
type WebhookUseCase struct {
	orderUC    *OrderUseCase
	eventStore EventStore
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewWebhookUseCase creates a new WebhookUseCase.
func NewWebhookUseCase(orderUC *OrderUseCase, eventStore EventStore, retrier Retrier, m *metrics.Metrics, logger zerolog.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		orderUC:    orderUC,
		eventStore: eventStore,
		retrier:    retrier,
		metrics:    m,
		logger:     logger,
	}
}

// HandleEvent processes one verified provider event. It returns an error
// only for infrastructure failures the HTTP layer chooses to log; business
// outcomes (unknown order, unknown event type, replay) are acknowledged
// silently so the provider does not retry-storm us.
func (uc *WebhookUseCase) HandleEvent(ctx context.Context, event *payment.Event) error {
	logger := uc.logger.With().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Logger()

	marked := false
	if event.ID != "" && uc.eventStore != nil {
		first, err := uc.eventStore.MarkProcessed(ctx, event.ID, WebhookEventTTL)
		if err != nil {
			// Dedup store being down is not a reason to drop the event; the
			// order-level idempotency check still holds.
			logger.Warn().Err(err).Msg("event dedup store unavailable, relying on order idempotency")
		} else if !first {
			logger.Info().Msg("duplicate webhook event, ignoring")
			uc.observe(event.Type, "duplicate")
			return nil
		} else {
			marked = true
		}
	}

	var dispatch func(context.Context) error
	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
		dispatch = func(ctx context.Context) error {
			return uc.orderUC.CompleteOrderBySession(ctx, event.SessionID, event.PaymentID)
		}

	case payment.EventAsyncPaymentFailed:
		dispatch = func(ctx context.Context) error {
			return uc.orderUC.FailOrderBySession(ctx, event.SessionID, "payment failed")
		}

	case payment.EventChargeRefunded:
		dispatch = func(ctx context.Context) error {
			return uc.orderUC.RefundOrderByPayment(ctx, event.PaymentID, "provider refund")
		}

	default:
		// Unknown event types are acknowledged for forward compatibility.
		logger.Debug().Msg("unhandled webhook event type")
		uc.observe(event.Type, "ignored")
		return nil
	}

	// Concurrent deliveries for the same order can deadlock on row locks;
	// those show up as retryable serialization errors.
	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, func() error { return dispatch(ctx) })
	} else {
		err = dispatch(ctx)
	}

	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			logger.Warn().
				Str("session_id", event.SessionID).
				Str("payment_id", event.PaymentID).
				Msg("webhook references unknown order")
			uc.observe(event.Type, "order_not_found")
			return nil
		}

		// The event id was recorded before dispatch. Release it, otherwise
		// the provider's redelivery of this event would be swallowed as a
		// duplicate and the order transition lost.
		if marked {
			if unmarkErr := uc.eventStore.Unmark(ctx, event.ID); unmarkErr != nil {
				logger.Error().Err(unmarkErr).Msg("failed to release event dedup record")
			}
		}

		uc.observe(event.Type, "error")
		return err
	}

	uc.observe(event.Type, "processed")
	return nil
}

func (uc *WebhookUseCase) observe(eventType, result string) {
	if uc.metrics != nil {
		uc.metrics.WebhookEvents.WithLabelValues(eventType, result).Inc()
	}
}
