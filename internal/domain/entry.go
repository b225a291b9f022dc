package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryKindPurchase   EntryKind = "purchase"
	EntryKindUsage      EntryKind = "usage"
	EntryKindRefund     EntryKind = "refund"
	EntryKindAdjustment EntryKind = "adjustment"
)

// LedgerEntry is an immutable record of one balance-affecting event.
// Amount is signed: negative for debits, positive for credits. BalanceAfter
// is the account balance immediately after the entry was applied.
type LedgerEntry struct {
	ID           string
	AccountID    string
	OrderID      string // empty unless the entry was triggered by an order
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Kind         EntryKind
	Description  string
	CreatedAt    time.Time
}

// ReplayBalance reconstructs a balance by applying entries, in creation
// order, on top of the starting balance. It fails if any entry's
// BalanceAfter does not match the running sum.
func ReplayBalance(start decimal.Decimal, entries []*LedgerEntry) (decimal.Decimal, error) {
	balance := start
	for _, e := range entries {
		balance = balance.Add(e.Amount)
		if !balance.Equal(e.BalanceAfter) {
			return decimal.Zero, ErrLedgerMismatch
		}
	}
	return balance, nil
}
