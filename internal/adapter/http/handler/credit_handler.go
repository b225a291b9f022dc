package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// CreditMutationService is the balance-mutating surface used by CreditHandler.
type CreditMutationService interface {
	Deduct(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error)
	Adjust(ctx context.Context, accountID string, amount decimal.Decimal, reason string) (*domain.LedgerEntry, error)
}

// ReconciliationService replays an account's ledger.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
}

// CreditHandler handles credit deduction, admin adjustment and
// reconciliation requests.
type CreditHandler struct {
	creditUC         CreditMutationService
	reconciliationUC ReconciliationService
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(creditUC CreditMutationService, reconciliationUC ReconciliationService) *CreditHandler {
	return &CreditHandler{creditUC: creditUC, reconciliationUC: reconciliationUC}
}

// Deduct consumes credits from an account.
func (h *CreditHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	var req dto.DeductCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.creditUC.Deduct(r.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deduct credits", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Adjust applies a signed administrative balance correction.
func (h *CreditHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.creditUC.Adjust(r.Context(), req.AccountID, req.Amount, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust credits", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Reconcile replays the account's ledger against its stored balance.
func (h *CreditHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}
