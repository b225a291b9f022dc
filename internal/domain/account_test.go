package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccountValidateDeduct(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		wantErr error
	}{
		{"sufficient balance", "3.00", "1.00", nil},
		{"exact balance", "1.00", "1.00", nil},
		{"insufficient balance", "0.50", "1.00", ErrInsufficientCredits},
		{"zero balance", "0.00", "1.00", ErrInsufficientCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &Account{Balance: mustDecimal(t, tt.balance)}

			err := account.ValidateDeduct(mustDecimal(t, tt.amount))
			if err != tt.wantErr {
				t.Errorf("ValidateDeduct() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountApplyDeduct(t *testing.T) {
	account := &Account{Balance: mustDecimal(t, "3.00")}

	got := account.ApplyDeduct(mustDecimal(t, "1.00"))
	if !got.Equal(mustDecimal(t, "2.00")) {
		t.Errorf("ApplyDeduct() = %s, want 2.00", got)
	}

	// Balance itself is untouched until the repository writes it back.
	if !account.Balance.Equal(mustDecimal(t, "3.00")) {
		t.Errorf("balance mutated to %s", account.Balance)
	}
}

func TestIsLowBalance(t *testing.T) {
	if !IsLowBalance(mustDecimal(t, "1.00")) {
		t.Error("expected 1.00 to be low balance")
	}
	if IsLowBalance(mustDecimal(t, "1.01")) {
		t.Error("1.01 should not be low balance")
	}
	if IsLowBalance(mustDecimal(t, "0.00")) {
		t.Error("0.00 should not trigger the threshold notification")
	}
}

func TestReplayBalance(t *testing.T) {
	entries := []*LedgerEntry{
		{Amount: mustDecimal(t, "3.00"), BalanceAfter: mustDecimal(t, "3.00"), Kind: EntryKindPurchase},
		{Amount: mustDecimal(t, "-1.00"), BalanceAfter: mustDecimal(t, "2.00"), Kind: EntryKindUsage},
		{Amount: mustDecimal(t, "-1.00"), BalanceAfter: mustDecimal(t, "1.00"), Kind: EntryKindUsage},
		{Amount: mustDecimal(t, "1.00"), BalanceAfter: mustDecimal(t, "2.00"), Kind: EntryKindRefund},
	}

	balance, err := ReplayBalance(decimal.Zero, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "2.00")) {
		t.Errorf("ReplayBalance() = %s, want 2.00", balance)
	}
}

func TestReplayBalanceMismatch(t *testing.T) {
	entries := []*LedgerEntry{
		{Amount: mustDecimal(t, "3.00"), BalanceAfter: mustDecimal(t, "3.00")},
		{Amount: mustDecimal(t, "-1.00"), BalanceAfter: mustDecimal(t, "1.50")}, // broken snapshot
	}

	if _, err := ReplayBalance(decimal.Zero, entries); err != ErrLedgerMismatch {
		t.Errorf("expected ErrLedgerMismatch, got %v", err)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
