package domain

import "errors"

var (
	// Account / ledger errors
	ErrAccountNotFound              = errors.New("account not found")
	ErrEmailRequired                = errors.New("email is required")
	ErrInsufficientCredits          = errors.New("insufficient credits")
	ErrInsufficientBalanceForRefund = errors.New("insufficient balance to absorb refund")
	ErrLedgerMismatch               = errors.New("ledger entries do not reconstruct balance")

	// Order errors
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCompleted = errors.New("order already completed")
	ErrOrderNotPending       = errors.New("order is not pending")
	ErrOrderNotCompleted     = errors.New("order is not completed")
	ErrPackageNotFound       = errors.New("package not found or inactive")

	// Promo code errors
	ErrPromoCodeNotFound    = errors.New("promo code not found")
	ErrPromoCodeInactive    = errors.New("promo code is not active")
	ErrPromoCodeExpired     = errors.New("promo code has expired")
	ErrPromoCodeExhausted   = errors.New("promo code usage limit reached")
	ErrPromoCodeAlreadyUsed = errors.New("promo code already used by this account")

	// Conversion errors
	ErrConversionNotFound = errors.New("conversion not found")

	// Validation errors
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrReasonRequired = errors.New("a reason is required")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
