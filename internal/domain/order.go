package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a purchase attempt.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Order records one purchase attempt, bridging a payment-provider checkout
// session to an internal credit grant.
type Order struct {
	ID                string
	AccountID         string
	Amount            decimal.Decimal
	Currency          string
	PackageCode       string
	CreditsPurchased  decimal.Decimal
	Status            OrderStatus
	ProviderSessionID string
	ProviderPaymentID string
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanComplete reports whether the order may transition to completed.
// Completed orders are deliberately not an error: duplicate webhook delivery
// must be a no-op, which the caller decides by inspecting Status first.
func (o *Order) CanComplete() error {
	switch o.Status {
	case OrderStatusPending:
		return nil
	case OrderStatusCompleted:
		return ErrOrderAlreadyCompleted
	default:
		return ErrOrderNotPending
	}
}

// CanFail reports whether the order may transition to failed.
func (o *Order) CanFail() error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotPending
	}
	return nil
}

// CanRefund reports whether the order may transition to refunded.
func (o *Order) CanRefund() error {
	if o.Status != OrderStatusCompleted {
		return ErrOrderNotCompleted
	}
	return nil
}

// Package is a purchasable credit bundle.
type Package struct {
	ID           string
	Code         string
	Name         string
	Description  string
	Price        decimal.Decimal
	Credits      decimal.Decimal
	Active       bool
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
