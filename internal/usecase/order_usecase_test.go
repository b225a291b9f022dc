package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/payment"
	"github.com/snap2code/creditledger/internal/usecase"
	"github.com/snap2code/creditledger/internal/usecase/mocks"
)

type orderFixture struct {
	accRepo   *mocks.MockAccountRepository
	entryRepo *mocks.MockEntryRepository
	orderRepo *mocks.MockOrderRepository
	pkgRepo   *mocks.MockPackageRepository
	provider  *mocks.MockPaymentProvider
	uc        *usecase.OrderUseCase
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &orderFixture{
		accRepo:   mocks.NewMockAccountRepository(),
		entryRepo: mocks.NewMockEntryRepository(),
		orderRepo: mocks.NewMockOrderRepository(),
		pkgRepo:   mocks.NewMockPackageRepository(),
		provider:  mocks.NewMockPaymentProvider(ctrl),
	}

	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	creditUC := usecase.NewCreditUseCase(txMgr, f.accRepo, f.entryRepo, idGen, nil, nil, zerolog.Nop())
	f.uc = usecase.NewOrderUseCase(txMgr, f.orderRepo, f.pkgRepo, f.accRepo, creditUC, f.provider, idGen, nil, zerolog.Nop())

	return f
}

func TestOrderUseCase_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Email: "a@example.com"})
	f.pkgRepo.Put(&domain.Package{
		Code:    "pro",
		Name:    "Pro",
		Price:   decimal.NewFromInt(29),
		Credits: decimal.NewFromInt(100),
		Active:  true,
	})

	f.provider.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any(), gomock.Any(), "a@example.com").
		Return(&payment.CheckoutSession{ID: "cs_123", URL: "https://pay.example.com/cs_123"}, nil)

	result, err := f.uc.CreateOrder(context.Background(), "acc-1", "pro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CheckoutURL != "https://pay.example.com/cs_123" {
		t.Errorf("checkout url = %s", result.CheckoutURL)
	}
	if result.Order.Status != domain.OrderStatusPending {
		t.Errorf("order status = %s, want pending", result.Order.Status)
	}
	if result.Order.ProviderSessionID != "cs_123" {
		t.Errorf("order session id = %s, want cs_123", result.Order.ProviderSessionID)
	}

	// No credits until payment is confirmed.
	if len(f.entryRepo.Entries()) != 0 {
		t.Error("order creation must not touch the ledger")
	}
}

func TestOrderUseCase_CreateOrder_ProviderFailure(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Email: "a@example.com"})
	f.pkgRepo.Put(&domain.Package{Code: "pro", Price: decimal.NewFromInt(29), Credits: decimal.NewFromInt(100), Active: true})

	f.provider.EXPECT().
		CreateCheckoutSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("provider unavailable"))

	_, err := f.uc.CreateOrder(context.Background(), "acc-1", "pro")
	if err == nil {
		t.Fatal("expected error")
	}

	// The order is closed so a stray webhook cannot complete it later.
	orders, _ := f.orderRepo.ListByAccount(context.Background(), "acc-1", 10, 0)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Status != domain.OrderStatusFailed {
		t.Errorf("order status = %s, want failed", orders[0].Status)
	}
}

func TestOrderUseCase_CreateOrder_InactivePackage(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1"})
	f.pkgRepo.Put(&domain.Package{Code: "legacy", Active: false})

	_, err := f.uc.CreateOrder(context.Background(), "acc-1", "legacy")
	if !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestOrderUseCase_CompleteOrder(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(5)})
	f.orderRepo.Put(&domain.Order{
		ID:               "ord-1",
		AccountID:        "acc-1",
		PackageCode:      "pro",
		CreditsPurchased: decimal.NewFromInt(100),
		Status:           domain.OrderStatusPending,
	})

	if err := f.uc.CompleteOrder(context.Background(), "ord-1", "pi_123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := f.orderRepo.Get("ord-1")
	if order.Status != domain.OrderStatusCompleted {
		t.Errorf("order status = %s, want completed", order.Status)
	}
	if order.ProviderPaymentID != "pi_123" {
		t.Errorf("payment id = %s, want pi_123", order.ProviderPaymentID)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(105)) {
		t.Errorf("balance = %s, want 105", account.Balance)
	}

	entries := f.entryRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Kind != domain.EntryKindPurchase || entries[0].Description != "Purchase: pro" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestOrderUseCase_CompleteOrder_Idempotent(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.Zero})
	f.orderRepo.Put(&domain.Order{
		ID:               "ord-1",
		AccountID:        "acc-1",
		PackageCode:      "pro",
		CreditsPurchased: decimal.NewFromInt(100),
		Status:           domain.OrderStatusPending,
	})

	if err := f.uc.CompleteOrder(context.Background(), "ord-1", "pi_123"); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	// Duplicate delivery.
	if err := f.uc.CompleteOrder(context.Background(), "ord-1", "pi_123"); err != nil {
		t.Fatalf("duplicate completion must be a no-op, got %v", err)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100 (credited exactly once)", account.Balance)
	}
	if len(f.entryRepo.Entries()) != 1 {
		t.Errorf("entries = %d, want exactly 1", len(f.entryRepo.Entries()))
	}
}

func TestOrderUseCase_CompleteOrder_FailedOrder(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1"})
	f.orderRepo.Put(&domain.Order{ID: "ord-1", AccountID: "acc-1", Status: domain.OrderStatusFailed})

	err := f.uc.CompleteOrder(context.Background(), "ord-1", "pi_123")
	if !errors.Is(err, domain.ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got %v", err)
	}
}

func TestOrderUseCase_RefundOrder(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		expectError error
		wantBalance decimal.Decimal
	}{
		{
			name:        "refund with unspent credits",
			balance:     decimal.NewFromInt(100),
			wantBalance: decimal.Zero,
		},
		{
			name:        "refund refused when credits spent",
			balance:     decimal.NewFromInt(30),
			expectError: domain.ErrInsufficientBalanceForRefund,
			wantBalance: decimal.NewFromInt(30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)

			f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: tt.balance})
			f.orderRepo.Put(&domain.Order{
				ID:                "ord-1",
				AccountID:         "acc-1",
				PackageCode:       "pro",
				CreditsPurchased:  decimal.NewFromInt(100),
				Status:            domain.OrderStatusCompleted,
				ProviderPaymentID: "pi_123",
			})

			// The provider refund runs only after the ledger debit commits.
			if tt.expectError == nil {
				f.provider.EXPECT().
					CreateRefund(gomock.Any(), "pi_123", "customer request").
					Return(nil)
			}

			err := f.uc.RefundOrder(context.Background(), "ord-1", "customer request")

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
			if !account.Balance.Equal(tt.wantBalance) {
				t.Errorf("balance = %s, want %s", account.Balance, tt.wantBalance)
			}
		})
	}
}

func TestOrderUseCase_RefundOrder_DuplicateIsNoOp(t *testing.T) {
	f := newOrderFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(100)})
	f.orderRepo.Put(&domain.Order{
		ID:               "ord-1",
		AccountID:        "acc-1",
		PackageCode:      "pro",
		CreditsPurchased: decimal.NewFromInt(100),
		Status:           domain.OrderStatusCompleted,
	})

	if err := f.uc.RefundOrder(context.Background(), "ord-1", "dup test"); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if err := f.uc.RefundOrder(context.Background(), "ord-1", "dup test"); err != nil {
		t.Fatalf("duplicate refund must be a no-op, got %v", err)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.Zero) {
		t.Errorf("balance = %s, want 0 (debited exactly once)", account.Balance)
	}
}
