package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func newTestVerifier(now time.Time) *Verifier {
	v := NewVerifier(testSecret)
	v.now = func() time.Time { return now }
	return v
}

func checkoutPayload(eventID, sessionID, paymentIntent string) []byte {
	return fmt.Appendf(nil, `{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"payment_intent": %q,
			"metadata": {"order_id": "ord-1", "account_id": "acc-1"}
		}}
	}`, eventID, sessionID, paymentIntent)
}

func TestConstructEvent(t *testing.T) {
	now := time.Now()
	payload := checkoutPayload("evt_1", "cs_123", "pi_456")
	header := SignPayload(testSecret, now, payload)

	event, err := newTestVerifier(now).ConstructEvent(payload, header)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_123", event.SessionID)
	assert.Equal(t, "pi_456", event.PaymentID)
	assert.Equal(t, "ord-1", event.OrderID)
}

func TestConstructEvent_BadSignature(t *testing.T) {
	now := time.Now()
	payload := checkoutPayload("evt_1", "cs_123", "pi_456")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", SignPayload("whsec_other", now, payload)},
		{"tampered payload", SignPayload(testSecret, now, []byte(`{"type":"x"}`))},
		{"garbage header", "not-a-signature"},
		{"bad timestamp", "t=abc,v1=deadbeef"},
		{"no v1 entry", fmt.Sprintf("t=%d", now.Unix())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestVerifier(now).ConstructEvent(payload, tt.header)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestConstructEvent_StaleTimestamp(t *testing.T) {
	now := time.Now()
	payload := checkoutPayload("evt_1", "cs_123", "pi_456")

	// Valid MAC, but signed outside the replay window on either side.
	for _, skew := range []time.Duration{-6 * time.Minute, 6 * time.Minute} {
		header := SignPayload(testSecret, now.Add(skew), payload)
		_, err := newTestVerifier(now).ConstructEvent(payload, header)
		assert.ErrorIs(t, err, ErrInvalidSignature, "skew %s", skew)
	}
}

func TestConstructEvent_SecretRotation(t *testing.T) {
	now := time.Now()
	payload := checkoutPayload("evt_1", "cs_123", "pi_456")

	// Old-secret signature first, current-secret signature second.
	stale := SignPayload("whsec_retired", now, payload)
	current := SignPayload(testSecret, now, payload)
	header := stale + "," + current[len(fmt.Sprintf("t=%d,", now.Unix())):]

	event, err := newTestVerifier(now).ConstructEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
}

func TestConstructEvent_MalformedPayload(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("not json at all")},
		{"missing type", []byte(`{"id": "evt_1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := SignPayload(testSecret, now, tt.payload)
			_, err := newTestVerifier(now).ConstructEvent(tt.payload, header)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestParseEvent_ChargeRefunded(t *testing.T) {
	payload := []byte(`{
		"id": "evt_9",
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "payment_intent": "pi_456"}}
	}`)

	event, err := parseEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, EventChargeRefunded, event.Type)
	assert.Equal(t, "pi_456", event.PaymentID)
	// Charge events correlate by payment intent, not session.
	assert.Empty(t, event.SessionID)
}
