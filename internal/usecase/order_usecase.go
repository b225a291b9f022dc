package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
)

// OrderUseCase drives the purchase lifecycle: pending -> completed/failed,
// completed -> refunded. Credits are granted only on confirmed payment, in
// the same transaction as the status flip.
type OrderUseCase struct {
	txManager   TransactionManager
	orderRepo   OrderRepository
	packageRepo PackageRepository
	accountRepo AccountRepository
	creditUC    *CreditUseCase
	provider    PaymentProvider
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(
	txManager TransactionManager,
	orderRepo OrderRepository,
	packageRepo PackageRepository,
	accountRepo AccountRepository,
	creditUC *CreditUseCase,
	provider PaymentProvider,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txManager:   txManager,
		orderRepo:   orderRepo,
		packageRepo: packageRepo,
		accountRepo: accountRepo,
		creditUC:    creditUC,
		provider:    provider,
		idGen:       idGen,
		metrics:     m,
		logger:      logger,
	}
}

// CheckoutResult is what the purchase endpoint returns to the browser.
type CheckoutResult struct {
	Order       *domain.Order
	CheckoutURL string
}

// CreateOrder records a pending order for the package and opens a provider
// checkout session. No ledger effect happens here; credits arrive only via
// CompleteOrder once the provider confirms payment.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, accountID, packageCode string) (*CheckoutResult, error) {
	pkg, err := uc.packageRepo.GetByCode(ctx, packageCode)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, domain.ErrPackageNotFound
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:               uc.idGen.Generate(),
		AccountID:        accountID,
		Amount:           pkg.Price,
		Currency:         "USD",
		PackageCode:      pkg.Code,
		CreditsPurchased: pkg.Credits,
		Status:           domain.OrderStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	session, err := uc.provider.CreateCheckoutSession(ctx, order, pkg, account.Email)
	if err != nil {
		// The provider never saw a session; close the order so it cannot be
		// completed by a stray event later.
		if failErr := uc.failOrder(ctx, order.ID, "checkout session creation failed"); failErr != nil {
			uc.logger.Error().Err(failErr).Str("order_id", order.ID).Msg("failed to mark order failed")
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := uc.orderRepo.SetSessionID(ctx, order.ID, session.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	order.ProviderSessionID = session.ID

	return &CheckoutResult{Order: order, CheckoutURL: session.URL}, nil
}

// CompleteOrder marks the order completed and credits the purchased amount,
// both in one transaction. Replayed calls for an already-completed order are
// a no-op: webhook delivery is at-least-once.
func (uc *OrderUseCase) CompleteOrder(ctx context.Context, orderID, paymentID string) error {
	return uc.complete(ctx, paymentID, func(ctx context.Context, tx Transaction) (*domain.Order, error) {
		return uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	})
}

// CompleteOrderBySession is CompleteOrder keyed by the provider checkout
// session id carried in webhook events.
func (uc *OrderUseCase) CompleteOrderBySession(ctx context.Context, sessionID, paymentID string) error {
	return uc.complete(ctx, paymentID, func(ctx context.Context, tx Transaction) (*domain.Order, error) {
		return uc.orderRepo.GetBySessionIDForUpdate(ctx, tx, sessionID)
	})
}

func (uc *OrderUseCase) complete(ctx context.Context, paymentID string, fetch func(context.Context, Transaction) (*domain.Order, error)) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	order, err := fetch(txCtx, tx)
	if err != nil {
		return err
	}

	// Idempotency check under the row lock: a concurrent duplicate delivery
	// blocks on the lock and then observes the completed status.
	if err := order.CanComplete(); err != nil {
		if err == domain.ErrOrderAlreadyCompleted {
			uc.logger.Info().Str("order_id", order.ID).Msg("order already completed, ignoring duplicate")
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	if err := uc.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusCompleted, paymentID, "", now); err != nil {
		return err
	}

	description := "Purchase: " + order.PackageCode
	if _, err := uc.creditUC.AddTx(txCtx, tx, order.AccountID, order.CreditsPurchased, description, order.ID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.OrdersCompleted.Inc()
	}

	uc.logger.Info().
		Str("order_id", order.ID).
		Str("account_id", order.AccountID).
		Str("credits", order.CreditsPurchased.String()).
		Msg("order completed")

	return nil
}

// CancelOrder moves a pending order to failed. There is no ledger effect
// because none was ever applied.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, orderID, reason string) error {
	return uc.failOrder(ctx, orderID, reason)
}

// FailOrderBySession moves a pending order, located by its checkout session,
// to failed. Non-pending orders are left untouched.
func (uc *OrderUseCase) FailOrderBySession(ctx context.Context, sessionID, reason string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	order, err := uc.orderRepo.GetBySessionIDForUpdate(txCtx, tx, sessionID)
	if err != nil {
		return err
	}

	if err := order.CanFail(); err != nil {
		uc.logger.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Msg("ignoring payment failure for non-pending order")
		return nil
	}

	if err := uc.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusFailed, "", reason, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func (uc *OrderUseCase) failOrder(ctx context.Context, orderID, reason string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	order, err := uc.orderRepo.GetByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return err
	}

	if err := order.CanFail(); err != nil {
		return err
	}

	if err := uc.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusFailed, "", reason, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// RefundOrder reverses a completed order: status goes to refunded and the
// purchased credits are debited back. If the account has already spent the
// credits the whole transaction rolls back with
// domain.ErrInsufficientBalanceForRefund and the order stays completed.
// After the ledger commits the charge is refunded at the provider; a failure
// there is logged, not returned, since the provider will emit charge_refunded
// once the operator retries and that path is a no-op on our side.
func (uc *OrderUseCase) RefundOrder(ctx context.Context, orderID, reason string) error {
	order, err := uc.refund(ctx, reason, func(ctx context.Context, tx Transaction) (*domain.Order, error) {
		return uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	})
	if err != nil || order == nil {
		return err
	}

	if order.ProviderPaymentID != "" {
		if err := uc.provider.CreateRefund(ctx, order.ProviderPaymentID, reason); err != nil {
			uc.logger.Error().Err(err).
				Str("order_id", order.ID).
				Str("payment_id", order.ProviderPaymentID).
				Msg("provider refund failed, credits already debited")
		}
	}
	return nil
}

// RefundOrderByPayment is RefundOrder keyed by the provider payment id, the
// correlation key on charge_refunded events. The provider has already moved
// the money by the time this event arrives, so only the ledger side runs.
func (uc *OrderUseCase) RefundOrderByPayment(ctx context.Context, paymentID, reason string) error {
	_, err := uc.refund(ctx, reason, func(ctx context.Context, tx Transaction) (*domain.Order, error) {
		return uc.orderRepo.GetByPaymentIDForUpdate(ctx, tx, paymentID)
	})
	return err
}

func (uc *OrderUseCase) refund(ctx context.Context, reason string, fetch func(context.Context, Transaction) (*domain.Order, error)) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	order, err := fetch(txCtx, tx)
	if err != nil {
		return nil, err
	}

	if err := order.CanRefund(); err != nil {
		if order.Status == domain.OrderStatusRefunded {
			uc.logger.Info().Str("order_id", order.ID).Msg("order already refunded, ignoring duplicate")
			return nil, nil
		}
		return nil, err
	}

	if err := uc.orderRepo.UpdateStatus(txCtx, tx, order.ID, domain.OrderStatusRefunded, order.ProviderPaymentID, reason, time.Now().UTC()); err != nil {
		return nil, err
	}

	description := "Refund: " + order.PackageCode
	if _, err := uc.creditUC.RefundTx(txCtx, tx, order.AccountID, order.CreditsPurchased, description, order.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrdersRefunded.Inc()
	}

	return order, nil
}

// GetOrder retrieves an order by id.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return uc.orderRepo.GetByID(ctx, id)
}

// ListOrders lists orders for an account, newest first.
func (uc *OrderUseCase) ListOrders(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.orderRepo.ListByAccount(ctx, accountID, limit, offset)
}

// ListPackages lists purchasable packages.
func (uc *OrderUseCase) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	return uc.packageRepo.ListActive(ctx)
}
