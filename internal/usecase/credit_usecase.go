package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
)

// CreditUseCase is the sole mutator of account balances and the ledger.
// Every operation runs balance read, balance write and entry insert in one
// transaction; concurrent operations on the same account serialize on the
// account row lock.
type CreditUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewCreditUseCase creates a new CreditUseCase.
func NewCreditUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	notifier Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CreditUseCase {
	return &CreditUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
	}
}

// Deduct removes amount from the account and records a usage entry. It fails
// with domain.ErrInsufficientCredits, without mutating anything, when the
// balance does not cover the amount.
func (uc *CreditUseCase) Deduct(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.apply(txCtx, tx, accountID, amount.Neg(), domain.EntryKindUsage, description, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsDeducted.Add(amount.InexactFloat64())
	}

	if domain.IsLowBalance(entry.BalanceAfter) {
		uc.scheduleLowBalanceNotice(accountID, entry.BalanceAfter)
	}

	return entry, nil
}

// Add credits amount to the account and records a purchase entry. orderID
// may be empty for grants that did not originate from an order.
func (uc *CreditUseCase) Add(ctx context.Context, accountID string, amount decimal.Decimal, description, orderID string) (decimal.Decimal, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.AddTx(txCtx, tx, accountID, amount, description, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	return entry.BalanceAfter, nil
}

// AddTx is Add running inside a caller-owned transaction. Order completion
// uses it so the status flip and the credit grant commit together.
func (uc *CreditUseCase) AddTx(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal, description, orderID string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	entry, err := uc.apply(ctx, tx, accountID, amount, domain.EntryKindPurchase, description, orderID)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsAdded.Add(amount.InexactFloat64())
	}

	return entry, nil
}

// Refund reverses a prior credit grant (chargeback path) as a refund-kind
// debit. When the account has already spent the credits the refund is
// refused with domain.ErrInsufficientBalanceForRefund rather than letting
// the balance go negative; the caller's transaction rolls back.
func (uc *CreditUseCase) Refund(ctx context.Context, accountID string, amount decimal.Decimal, description, orderID string) (decimal.Decimal, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.RefundTx(txCtx, tx, accountID, amount, description, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	return entry.BalanceAfter, nil
}

// RefundTx is Refund running inside a caller-owned transaction.
func (uc *CreditUseCase) RefundTx(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal, description, orderID string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	entry, err := uc.apply(ctx, tx, accountID, amount.Neg(), domain.EntryKindRefund, description, orderID)
	if err != nil {
		if err == domain.ErrInsufficientCredits {
			return nil, domain.ErrInsufficientBalanceForRefund
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsRefunded.Add(amount.InexactFloat64())
	}

	return entry, nil
}

// CompensateTx restores previously deducted credits as a positive
// refund-kind entry. Used when a paid action failed after its credit was
// consumed; distinct from Refund, which reverses a purchase.
func (uc *CreditUseCase) CompensateTx(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	entry, err := uc.apply(ctx, tx, accountID, amount, domain.EntryKindRefund, description, "")
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsAdded.Add(amount.InexactFloat64())
	}

	return entry, nil
}

// Compensate is CompensateTx in its own transaction.
func (uc *CreditUseCase) Compensate(ctx context.Context, accountID string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.CompensateTx(txCtx, tx, accountID, amount, description)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	return entry.BalanceAfter, nil
}

// Adjust applies a signed administrative correction with a mandatory reason.
// Negative adjustments obey the same floor as deductions.
func (uc *CreditUseCase) Adjust(ctx context.Context, accountID string, amount decimal.Decimal, reason string) (*domain.LedgerEntry, error) {
	if amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(amount.Abs()); err != nil {
		return nil, err
	}
	if err := domain.ValidateReason(reason); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.apply(txCtx, tx, accountID, amount, domain.EntryKindAdjustment, "Admin adjustment: "+reason, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return entry, nil
}

// apply locks the account row, applies the signed amount and appends the
// ledger entry. Callers own the transaction.
func (uc *CreditUseCase) apply(ctx context.Context, tx Transaction, accountID string, amount decimal.Decimal, kind domain.EntryKind, description, orderID string) (*domain.LedgerEntry, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, domain.ErrInsufficientCredits
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance, now); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:           uc.idGen.Generate(),
		AccountID:    accountID,
		OrderID:      orderID,
		Amount:       amount,
		BalanceAfter: newBalance,
		Kind:         kind,
		Description:  description,
		CreatedAt:    now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// scheduleLowBalanceNotice fires the notifier off the request path. The
// deduction has already committed; a delivery failure is logged and dropped.
func (uc *CreditUseCase) scheduleLowBalanceNotice(accountID string, balance decimal.Decimal) {
	if uc.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := uc.notifier.NotifyLowBalance(ctx, accountID, balance); err != nil {
			uc.logger.Error().Err(err).
				Str("account_id", accountID).
				Msg("low balance notification failed")
		}
	}()
}

// GetBalance returns the current balance for an account.
func (uc *CreditUseCase) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// ListEntries lists ledger entries for an account, newest first.
func (uc *CreditUseCase) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.entryRepo.ListByAccount(ctx, accountID, limit, offset)
}
