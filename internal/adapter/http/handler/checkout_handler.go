package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// OrderService defines the behavior needed by CheckoutHandler.
type OrderService interface {
	CreateOrder(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error)
	CancelOrder(ctx context.Context, orderID, reason string) error
	RefundOrder(ctx context.Context, orderID, reason string) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error)
	ListPackages(ctx context.Context) ([]*domain.Package, error)
}

// CheckoutHandler handles package purchases.
type CheckoutHandler struct {
	orderUC OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(orderUC OrderService) *CheckoutHandler {
	return &CheckoutHandler{orderUC: orderUC}
}

// ListPackages lists the purchasable credit packages.
func (h *CheckoutHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.orderUC.ListPackages(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list packages", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PackagesFromDomain(packages))
}

// Create opens a checkout session for a package.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.orderUC.CreateOrder(r.Context(), req.AccountID, req.PackageCode)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create checkout", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CheckoutResponse{
		Order:       dto.OrderFromDomain(result.Order),
		CheckoutURL: result.CheckoutURL,
	})
}

// Get retrieves an order by ID.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get order", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// ListByAccount lists an account's orders, newest first.
func (h *CheckoutHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	orders, err := h.orderUC.ListOrders(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrdersFromDomain(orders))
}

// Cancel abandons a pending order.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	if err := h.orderUC.CancelOrder(r.Context(), id, "cancelled by user"); err != nil {
		writeError(w, mapDomainError(err), "failed to cancel order", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refund reverses a completed order (administrative).
func (h *CheckoutHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	var req dto.RefundOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.orderUC.RefundOrder(r.Context(), id, req.Reason); err != nil {
		writeError(w, mapDomainError(err), "failed to refund order", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
