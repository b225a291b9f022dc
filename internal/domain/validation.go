package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxCreditAmount caps any single credit operation.
	MaxCreditAmount = "1000000"

	MaxDescriptionLength = 500
	MaxReasonLength      = 500
)

// ValidateAmount validates an amount for a credit operation. Amounts are
// strictly positive; direction is expressed by the operation, not the sign.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxCreditAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxCreditAmount)
	}

	return nil
}

// ValidateReason validates the mandatory human-readable reason on an
// administrative adjustment.
func ValidateReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if len(reason) > MaxReasonLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrReasonRequired, MaxReasonLength)
	}
	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
