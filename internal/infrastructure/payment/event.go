package payment

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Provider event types this service reacts to. Anything else is
// acknowledged and ignored.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventChargeRefunded        = "charge.refunded"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// Event is one verified provider notification, reduced to the correlation
// keys the reconciler needs.
type Event struct {
	ID        string
	Type      string
	SessionID string
	PaymentID string
	OrderID   string
	Raw       json.RawMessage
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// parseEvent decodes a raw provider payload into an Event. For checkout
// events the object id is the checkout session id; for charge events the
// payment intent is the correlation key.
func parseEvent(payload []byte) (*Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedPayload)
	}

	event := &Event{
		ID:        env.ID,
		Type:      env.Type,
		PaymentID: env.Data.Object.PaymentIntent,
		OrderID:   env.Data.Object.Metadata["order_id"],
		Raw:       json.RawMessage(payload),
	}

	switch env.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed:
		event.SessionID = env.Data.Object.ID
	}

	return event, nil
}
