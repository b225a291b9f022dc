package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowBalanceThreshold is the balance at which a low-balance notification is
// scheduled after a deduction.
var LowBalanceThreshold = decimal.NewFromInt(1)

// Account holds the authoritative credit balance for one customer.
type Account struct {
	ID        string
	Email     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDeduct checks that amount can be taken from the current balance.
func (a *Account) ValidateDeduct(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientCredits
	}
	return nil
}

// ApplyDeduct returns the balance after a deduction.
func (a *Account) ApplyDeduct(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// IsLowBalance reports whether balance sits exactly at the warning threshold.
func IsLowBalance(balance decimal.Decimal) bool {
	return balance.Equal(LowBalanceThreshold)
}
