package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
)

// ConversionService defines the behavior needed by ConversionHandler.
type ConversionService interface {
	Start(ctx context.Context, accountID, framework string) (*domain.Conversion, error)
	GetConversion(ctx context.Context, id string) (*domain.Conversion, error)
	MarkFailed(ctx context.Context, conversionID, errorMessage string, retryCount int) error
	CompensateOnFailure(ctx context.Context, conversionID string) error
}

// ConversionEnqueuer hands a started conversion to the background worker.
type ConversionEnqueuer interface {
	Enqueue(conversion *domain.Conversion) bool
}

// ConversionHandler handles conversion requests.
type ConversionHandler struct {
	conversionUC ConversionService
	enqueuer     ConversionEnqueuer
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(conversionUC ConversionService, enqueuer ConversionEnqueuer) *ConversionHandler {
	return &ConversionHandler{
		conversionUC: conversionUC,
		enqueuer:     enqueuer,
	}
}

// Start charges one credit and queues the conversion. The response is 202:
// the conversion itself runs in the background.
func (h *ConversionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	conversion, err := h.conversionUC.Start(r.Context(), req.AccountID, req.Framework)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to start conversion", err.Error())
		return
	}

	if !h.enqueuer.Enqueue(conversion) {
		// The credit is already consumed; give it back before refusing.
		_ = h.conversionUC.MarkFailed(r.Context(), conversion.ID, "conversion queue is full", 0)
		_ = h.conversionUC.CompensateOnFailure(r.Context(), conversion.ID)
		writeError(w, http.StatusServiceUnavailable, "conversion queue is full", "")
		return
	}

	writeJSON(w, http.StatusAccepted, dto.ConversionFromDomain(conversion))
}

// Get retrieves a conversion by ID.
func (h *ConversionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing conversion ID", "")
		return
	}

	conversion, err := h.conversionUC.GetConversion(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get conversion", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionFromDomain(conversion))
}
