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

type webhookFixture struct {
	*orderFixture
	eventStore *mocks.MockEventStore
	uc         *usecase.WebhookUseCase
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &webhookFixture{
		orderFixture: newOrderFixture(t),
		eventStore:   mocks.NewMockEventStore(ctrl),
	}
	f.uc = usecase.NewWebhookUseCase(f.orderFixture.uc, f.eventStore, nil, nil, zerolog.Nop())

	return f
}

func pendingOrder(f *webhookFixture) {
	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.Zero})
	f.orderRepo.Put(&domain.Order{
		ID:                "ord-1",
		AccountID:         "acc-1",
		PackageCode:       "pro",
		CreditsPurchased:  decimal.NewFromInt(100),
		Status:            domain.OrderStatusPending,
		ProviderSessionID: "cs_123",
	})
}

func TestWebhookUseCase_CheckoutCompleted(t *testing.T) {
	f := newWebhookFixture(t)
	pendingOrder(f)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), "evt_1", usecase.WebhookEventTTL).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventCheckoutCompleted,
		SessionID: "cs_123",
		PaymentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := f.orderRepo.Get("ord-1")
	if order.Status != domain.OrderStatusCompleted {
		t.Errorf("order status = %s, want completed", order.Status)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", account.Balance)
	}
}

func TestWebhookUseCase_DuplicateEventID(t *testing.T) {
	f := newWebhookFixture(t)
	pendingOrder(f)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), "evt_1", gomock.Any()).Return(false, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventCheckoutCompleted,
		SessionID: "cs_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Short-circuited before the order was touched.
	if f.orderRepo.Get("ord-1").Status != domain.OrderStatusPending {
		t.Error("duplicate event must not modify the order")
	}
}

func TestWebhookUseCase_DedupStoreDown(t *testing.T) {
	f := newWebhookFixture(t)
	pendingOrder(f)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, context.DeadlineExceeded)

	// A broken dedup store must not drop the event; order idempotency covers it.
	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventCheckoutCompleted,
		SessionID: "cs_123",
		PaymentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.orderRepo.Get("ord-1").Status != domain.OrderStatusCompleted {
		t.Error("event must still be processed when the dedup store is down")
	}
}

func TestWebhookUseCase_RedeliveryAfterDispatchFailure(t *testing.T) {
	f := newWebhookFixture(t)
	pendingOrder(f)

	event := &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventCheckoutCompleted,
		SessionID: "cs_123",
		PaymentID: "pi_123",
	}

	// First delivery: the order lookup fails mid-dispatch. The dedup record
	// must be released, or the provider's redelivery of the same event id
	// would be dropped as a duplicate and the purchase never credited.
	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), "evt_1", gomock.Any()).Return(true, nil)
	f.eventStore.EXPECT().Unmark(gomock.Any(), "evt_1").Return(nil)

	f.orderRepo.GetBySessionIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, sessionID string) (*domain.Order, error) {
		return nil, errors.New("connection reset")
	}

	if err := f.uc.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("a storage failure must propagate so the provider redelivers")
	}

	// Redelivery: the store treats the event id as fresh again and the
	// dispatch now goes through.
	f.orderRepo.GetBySessionIDForUpdateFunc = nil
	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), "evt_1", gomock.Any()).Return(true, nil)

	if err := f.uc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("redelivery must be processed, got %v", err)
	}

	if f.orderRepo.Get("ord-1").Status != domain.OrderStatusCompleted {
		t.Error("order must be completed by the redelivery")
	}
	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", account.Balance)
	}
}

func TestWebhookUseCase_UnknownOrderIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventCheckoutCompleted,
		SessionID: "cs_unknown",
	})
	if err != nil {
		t.Fatalf("unknown order must be acknowledged, got %v", err)
	}
}

func TestWebhookUseCase_UnknownEventTypeIsAcked(t *testing.T) {
	f := newWebhookFixture(t)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:   "evt_1",
		Type: "customer.created",
	})
	if err != nil {
		t.Fatalf("unknown event type must be acknowledged, got %v", err)
	}
}

func TestWebhookUseCase_AsyncPaymentFailed(t *testing.T) {
	f := newWebhookFixture(t)
	pendingOrder(f)

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventAsyncPaymentFailed,
		SessionID: "cs_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.orderRepo.Get("ord-1").Status != domain.OrderStatusFailed {
		t.Error("order must transition to failed")
	}
	if len(f.entryRepo.Entries()) != 0 {
		t.Error("a failed payment must not touch the ledger")
	}
}

func TestWebhookUseCase_ChargeRefunded(t *testing.T) {
	f := newWebhookFixture(t)

	f.accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(100)})
	f.orderRepo.Put(&domain.Order{
		ID:                "ord-1",
		AccountID:         "acc-1",
		PackageCode:       "pro",
		CreditsPurchased:  decimal.NewFromInt(100),
		Status:            domain.OrderStatusCompleted,
		ProviderPaymentID: "pi_123",
	})

	f.eventStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	err := f.uc.HandleEvent(context.Background(), &payment.Event{
		ID:        "evt_1",
		Type:      payment.EventChargeRefunded,
		PaymentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.Zero) {
		t.Errorf("balance = %s, want 0", account.Balance)
	}
}
