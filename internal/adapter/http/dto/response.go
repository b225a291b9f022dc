package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// BalanceResponse represents a balance lookup result.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	OrderID      string          `json:"order_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		OrderID:      e.OrderID,
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		Kind:         string(e.Kind),
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse is the ledger history page.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PackageCode      string          `json:"package_code"`
	CreditsPurchased decimal.Decimal `json:"credits_purchased"`
	Status           string          `json:"status"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderFromDomain converts domain order to response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:               o.ID,
		AccountID:        o.AccountID,
		Amount:           o.Amount,
		Currency:         o.Currency,
		PackageCode:      o.PackageCode,
		CreditsPurchased: o.CreditsPurchased,
		Status:           string(o.Status),
		FailureReason:    o.FailureReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// OrdersFromDomain converts domain orders to responses.
func OrdersFromDomain(orders []*domain.Order) []*OrderResponse {
	result := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderFromDomain(o)
	}
	return result
}

// CheckoutResponse is returned when a checkout session is created.
type CheckoutResponse struct {
	Order       *OrderResponse `json:"order"`
	CheckoutURL string         `json:"checkout_url"`
}

// PackageResponse represents a purchasable package.
type PackageResponse struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Credits      decimal.Decimal `json:"credits"`
	DisplayOrder int             `json:"display_order"`
}

// PackageFromDomain converts domain package to response.
func PackageFromDomain(p *domain.Package) *PackageResponse {
	return &PackageResponse{
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Credits:      p.Credits,
		DisplayOrder: p.DisplayOrder,
	}
}

// PackagesFromDomain converts domain packages to responses.
func PackagesFromDomain(packages []*domain.Package) []*PackageResponse {
	result := make([]*PackageResponse, len(packages))
	for i, p := range packages {
		result[i] = PackageFromDomain(p)
	}
	return result
}

// PromoResponse represents a promo code.
type PromoResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Credits        decimal.Decimal `json:"credits"`
	MaxUses        int             `json:"max_uses"`
	MaxUsesPerUser int             `json:"max_uses_per_user"`
	StartsAt       time.Time       `json:"starts_at"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	Active         bool            `json:"active"`
}

// PromoFromDomain converts domain promo code to response.
func PromoFromDomain(p *domain.PromoCode) *PromoResponse {
	resp := &PromoResponse{
		ID:             p.ID,
		Code:           p.Code,
		Credits:        p.Credits,
		MaxUses:        p.MaxUses,
		MaxUsesPerUser: p.MaxUsesPerUser,
		StartsAt:       p.StartsAt,
		Active:         p.Active,
	}
	if !p.ExpiresAt.IsZero() {
		expiresAt := p.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// ConversionResponse represents a conversion attempt.
type ConversionResponse struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Framework    string    `json:"framework"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Refunded     bool      `json:"refunded"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversionFromDomain converts domain conversion to response.
func ConversionFromDomain(c *domain.Conversion) *ConversionResponse {
	return &ConversionResponse{
		ID:           c.ID,
		AccountID:    c.AccountID,
		Framework:    c.Framework,
		Status:       string(c.Status),
		ErrorMessage: c.ErrorMessage,
		Refunded:     c.Refunded,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ReconciliationResponse reports a ledger replay outcome.
type ReconciliationResponse struct {
	AccountID       string          `json:"account_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	EntryCount      int             `json:"entry_count"`
	IsReconciled    bool            `json:"is_reconciled"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:       r.AccountID,
		RecordedBalance: r.RecordedBalance,
		ReplayedBalance: r.ReplayedBalance,
		Difference:      r.Difference,
		EntryCount:      r.EntryCount,
		IsReconciled:    r.IsReconciled,
		CheckedAt:       r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
