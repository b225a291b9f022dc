package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// PromoService defines the behavior needed by PromoHandler.
type PromoService interface {
	Redeem(ctx context.Context, code, accountID string) (decimal.Decimal, error)
	CreatePromo(ctx context.Context, input usecase.CreatePromoInput) (*domain.PromoCode, error)
}

// PromoHandler handles promo code requests.
type PromoHandler struct {
	promoUC PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(promoUC PromoService) *PromoHandler {
	return &PromoHandler{promoUC: promoUC}
}

// Redeem redeems a promo code for an account.
func (h *PromoHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.promoUC.Redeem(r.Context(), req.Code, req.AccountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to redeem promo code", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: req.AccountID,
		Balance:   balance,
	})
}

// Create creates a promo code (administrative).
func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	promo, err := h.promoUC.CreatePromo(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create promo code", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PromoFromDomain(promo))
}
