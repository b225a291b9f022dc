package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snap2code/creditledger/internal/infrastructure/payment"
)

// maxWebhookBody caps webhook payload size.
const maxWebhookBody = 1 << 20

// WebhookService consumes verified provider events.
type WebhookService interface {
	HandleEvent(ctx context.Context, event *payment.Event) error
}

// WebhookHandler receives payment-provider webhook deliveries. Signature
// verification happens on the raw body, before any JSON decoding.
type WebhookHandler struct {
	webhookUC WebhookService
	verifier  *payment.Verifier
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookUC WebhookService, verifier *payment.Verifier, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: webhookUC,
		verifier:  verifier,
		logger:    logger,
	}
}

// Receive handles one webhook delivery. Invalid signatures and malformed
// payloads get a 400 so the provider surfaces a misconfiguration; processing
// failures get a 500 so the provider retries the delivery.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	event, err := h.verifier.ConstructEvent(payload, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) || errors.Is(err, payment.ErrMalformedPayload) {
			h.logger.Warn().Err(err).Msg("rejected webhook delivery")
			writeError(w, http.StatusBadRequest, "invalid webhook", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to verify webhook", err.Error())
		return
	}

	if err := h.webhookUC.HandleEvent(r.Context(), event); err != nil {
		h.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("webhook processing failed")
		writeError(w, http.StatusInternalServerError, "webhook processing failed", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
