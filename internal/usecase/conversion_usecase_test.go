package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
	"github.com/snap2code/creditledger/internal/usecase/mocks"
)

type conversionFixture struct {
	accRepo   *mocks.MockAccountRepository
	entryRepo *mocks.MockEntryRepository
	convRepo  *mocks.MockConversionRepository
	uc        *usecase.ConversionUseCase
}

func newConversionFixture(t *testing.T) *conversionFixture {
	t.Helper()

	f := &conversionFixture{
		accRepo:   mocks.NewMockAccountRepository(),
		entryRepo: mocks.NewMockEntryRepository(),
		convRepo:  mocks.NewMockConversionRepository(),
	}

	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	creditUC := usecase.NewCreditUseCase(txMgr, f.accRepo, f.entryRepo, idGen, nil, nil, zerolog.Nop())
	f.uc = usecase.NewConversionUseCase(txMgr, f.convRepo, creditUC, idGen, nil, zerolog.Nop())

	return f
}

func TestConversionUseCase_Start(t *testing.T) {
	f := newConversionFixture(t)
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(5)})

	conversion, err := f.uc.Start(context.Background(), "acc-1", "react")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conversion.Status != domain.ConversionStatusPending {
		t.Errorf("status = %s, want pending", conversion.Status)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(4)) {
		t.Errorf("balance = %s, want 4 (one credit consumed up front)", account.Balance)
	}

	entries := f.entryRepo.Entries()
	if len(entries) != 1 || entries[0].Kind != domain.EntryKindUsage {
		t.Fatalf("expected one usage entry, got %v", entries)
	}
}

func TestConversionUseCase_Start_InsufficientCredits(t *testing.T) {
	f := newConversionFixture(t)
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.Zero})

	_, err := f.uc.Start(context.Background(), "acc-1", "react")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	if len(f.entryRepo.Entries()) != 0 {
		t.Error("refused start must not write a ledger entry")
	}
}

func TestConversionUseCase_Start_CompensatesWhenInsertFails(t *testing.T) {
	f := newConversionFixture(t)
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(5)})

	f.convRepo.CreateFunc = func(ctx context.Context, conversion *domain.Conversion) error {
		return errors.New("insert failed")
	}

	_, err := f.uc.Start(context.Background(), "acc-1", "react")
	if err == nil {
		t.Fatal("expected error")
	}

	// The up-front deduction is immediately given back.
	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("balance = %s, want 5", account.Balance)
	}
}

func TestConversionUseCase_CompensateOnFailure(t *testing.T) {
	f := newConversionFixture(t)
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(4)})
	f.convRepo.Put(&domain.Conversion{
		ID:        "conv-1",
		AccountID: "acc-1",
		Status:    domain.ConversionStatusFailed,
	})

	if err := f.uc.CompensateOnFailure(context.Background(), "conv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("balance = %s, want 5", account.Balance)
	}

	entries := f.entryRepo.Entries()
	if len(entries) != 1 || entries[0].Kind != domain.EntryKindRefund {
		t.Fatalf("expected one refund entry, got %v", entries)
	}
	if !entries[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("compensation amount = %s, want 1", entries[0].Amount)
	}
}

func TestConversionUseCase_CompensateOnFailure_AtMostOnce(t *testing.T) {
	f := newConversionFixture(t)
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(4)})
	f.convRepo.Put(&domain.Conversion{
		ID:        "conv-1",
		AccountID: "acc-1",
		Status:    domain.ConversionStatusFailed,
	})

	if err := f.uc.CompensateOnFailure(context.Background(), "conv-1"); err != nil {
		t.Fatalf("first compensation: %v", err)
	}
	if err := f.uc.CompensateOnFailure(context.Background(), "conv-1"); err != nil {
		t.Fatalf("second compensation must be a no-op, got %v", err)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("balance = %s, want 5 (compensated exactly once)", account.Balance)
	}
	if len(f.entryRepo.Entries()) != 1 {
		t.Errorf("entries = %d, want exactly 1", len(f.entryRepo.Entries()))
	}
}
