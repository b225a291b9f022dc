package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
	"github.com/snap2code/creditledger/internal/usecase/mocks"
)

func seedEntry(repo *mocks.MockEntryRepository, accountID string, amount, after int64) {
	_ = repo.Create(context.Background(), nil, &domain.LedgerEntry{
		AccountID:    accountID,
		Amount:       decimal.NewFromInt(amount),
		BalanceAfter: decimal.NewFromInt(after),
	})
}

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()

	accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(97)})
	seedEntry(entryRepo, "acc-1", 100, 100)
	seedEntry(entryRepo, "acc-1", -1, 99)
	seedEntry(entryRepo, "acc-1", -2, 97)

	uc := usecase.NewReconciliationUseCase(accRepo, entryRepo)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsReconciled {
		t.Error("expected account to reconcile")
	}
	if !result.ReplayedBalance.Equal(decimal.NewFromInt(97)) {
		t.Errorf("replayed = %s, want 97", result.ReplayedBalance)
	}
	if result.EntryCount != 3 {
		t.Errorf("entry count = %d, want 3", result.EntryCount)
	}
}

func TestReconciliationUseCase_DetectsDrift(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()

	// Stored balance drifted from what the entries reconstruct.
	accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(50)})
	seedEntry(entryRepo, "acc-1", 100, 100)
	seedEntry(entryRepo, "acc-1", -1, 99)

	uc := usecase.NewReconciliationUseCase(accRepo, entryRepo)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsReconciled {
		t.Error("expected drift to be detected")
	}
	if !result.Difference.Equal(decimal.NewFromInt(-49)) {
		t.Errorf("difference = %s, want -49", result.Difference)
	}
}

func TestReconciliationUseCase_DetectsBrokenSnapshot(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()

	accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(99)})
	seedEntry(entryRepo, "acc-1", 100, 100)
	// BalanceAfter disagrees with the running sum.
	seedEntry(entryRepo, "acc-1", -1, 42)

	uc := usecase.NewReconciliationUseCase(accRepo, entryRepo)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsReconciled {
		t.Error("broken snapshot must fail reconciliation")
	}
}

func TestReconciliationUseCase_EmptyLedger(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()

	accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.Zero})

	uc := usecase.NewReconciliationUseCase(accRepo, entryRepo)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsReconciled {
		t.Error("empty ledger with zero balance must reconcile")
	}
	if result.EntryCount != 0 {
		t.Errorf("entry count = %d, want 0", result.EntryCount)
	}
}
