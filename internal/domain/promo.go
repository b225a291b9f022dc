package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode grants a flat number of credits when redeemed. Zero caps mean
// unlimited; a zero ExpiresAt means no expiry.
type PromoCode struct {
	ID             string
	Code           string
	Credits        decimal.Decimal
	MaxUses        int
	MaxUsesPerUser int
	StartsAt       time.Time
	ExpiresAt      time.Time
	Active         bool
	CreatedAt      time.Time
}

// Redemption records one use of a promo code by one account.
type Redemption struct {
	ID          string
	PromoCodeID string
	AccountID   string
	CreatedAt   time.Time
}

// ValidateRedemption checks the code's window and caps against observed use
// counts. totalUses and userUses must be read under the same lock that
// guards the redemption insert.
func (p *PromoCode) ValidateRedemption(now time.Time, totalUses, userUses int) error {
	if !p.Active {
		return ErrPromoCodeInactive
	}
	if now.Before(p.StartsAt) {
		return ErrPromoCodeInactive
	}
	if !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt) {
		return ErrPromoCodeExpired
	}
	if p.MaxUses > 0 && totalUses >= p.MaxUses {
		return ErrPromoCodeExhausted
	}
	if p.MaxUsesPerUser > 0 && userUses >= p.MaxUsesPerUser {
		return ErrPromoCodeAlreadyUsed
	}
	return nil
}
