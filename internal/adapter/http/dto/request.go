package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Email string `json:"email"`
}

// CreateCheckoutRequest represents a request to start a package purchase.
type CreateCheckoutRequest struct {
	AccountID   string `json:"account_id"`
	PackageCode string `json:"package_code"`
}

// DeductCreditsRequest represents a request to consume credits.
type DeductCreditsRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// AdjustCreditsRequest represents an administrative balance correction.
type AdjustCreditsRequest struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// RedeemPromoRequest represents a promo code redemption.
type RedeemPromoRequest struct {
	AccountID string `json:"account_id"`
	Code      string `json:"code"`
}

// CreatePromoRequest represents a request to create a promo code.
type CreatePromoRequest struct {
	Code           string          `json:"code"`
	Credits        decimal.Decimal `json:"credits"`
	MaxUses        int             `json:"max_uses"`
	MaxUsesPerUser int             `json:"max_uses_per_user"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePromoRequest) ToUseCaseInput() usecase.CreatePromoInput {
	input := usecase.CreatePromoInput{
		Code:           r.Code,
		Credits:        r.Credits,
		MaxUses:        r.MaxUses,
		MaxUsesPerUser: r.MaxUsesPerUser,
	}
	if r.StartsAt != nil {
		input.StartsAt = *r.StartsAt
	}
	if r.ExpiresAt != nil {
		input.ExpiresAt = *r.ExpiresAt
	}
	return input
}

// StartConversionRequest represents a request to start a conversion.
type StartConversionRequest struct {
	AccountID string `json:"account_id"`
	Framework string `json:"framework"`
}

// RefundOrderRequest represents an administrative order refund.
type RefundOrderRequest struct {
	Reason string `json:"reason"`
}
