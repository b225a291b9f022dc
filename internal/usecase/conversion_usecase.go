package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
)

// ConversionUseCase is the usage gate in front of the external converter.
// One credit unit is consumed up front; if the conversion later fails
// terminally, CompensateOnFailure restores it exactly once.
type ConversionUseCase struct {
	txManager      TransactionManager
	conversionRepo ConversionRepository
	creditUC       *CreditUseCase
	idGen          IDGenerator
	metrics        *metrics.Metrics
	logger         zerolog.Logger

	cost decimal.Decimal
}

// NewConversionUseCase creates a new ConversionUseCase.
func NewConversionUseCase(
	txManager TransactionManager,
	conversionRepo ConversionRepository,
	creditUC *CreditUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ConversionUseCase {
	cost, _ := decimal.NewFromString(ConversionCost)

	return &ConversionUseCase{
		txManager:      txManager,
		conversionRepo: conversionRepo,
		creditUC:       creditUC,
		idGen:          idGen,
		metrics:        m,
		logger:         logger,
		cost:           cost,
	}
}

// Start reserves one credit and records the conversion attempt. It fails
// with domain.ErrInsufficientCredits before the external call ever runs.
func (uc *ConversionUseCase) Start(ctx context.Context, accountID, framework string) (*domain.Conversion, error) {
	if _, err := uc.creditUC.Deduct(ctx, accountID, uc.cost, "Conversion"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conversion := &domain.Conversion{
		ID:        uc.idGen.Generate(),
		AccountID: accountID,
		Framework: framework,
		Status:    domain.ConversionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.conversionRepo.Create(ctx, conversion); err != nil {
		// The credit is already gone; compensate immediately rather than
		// leaving an orphaned deduction.
		if _, addErr := uc.creditUC.Compensate(ctx, accountID, uc.cost, "Refund for failed conversion"); addErr != nil {
			uc.logger.Error().Err(addErr).Str("account_id", accountID).Msg("failed to compensate after conversion insert error")
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ConversionsStarted.Inc()
	}

	return conversion, nil
}

// MarkCompleted records a successful conversion. The credit stays consumed.
func (uc *ConversionUseCase) MarkCompleted(ctx context.Context, conversionID string) error {
	return uc.conversionRepo.UpdateStatus(ctx, conversionID, domain.ConversionStatusCompleted, "", 0, time.Now().UTC())
}

// MarkFailed records a terminal failure with the attempt count that was
// reached. It does not compensate; that is CompensateOnFailure's job.
func (uc *ConversionUseCase) MarkFailed(ctx context.Context, conversionID, errorMessage string, retryCount int) error {
	return uc.conversionRepo.UpdateStatus(ctx, conversionID, domain.ConversionStatusFailed, errorMessage, retryCount, time.Now().UTC())
}

// CompensateOnFailure restores the reserved credit for a terminally failed
// conversion, at most once: the refunded flag is checked and flipped under
// the conversion row lock, in the same transaction as the credit grant.
func (uc *ConversionUseCase) CompensateOnFailure(ctx context.Context, conversionID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	conversion, err := uc.conversionRepo.GetByIDForUpdate(txCtx, tx, conversionID)
	if err != nil {
		return err
	}

	if conversion.Refunded {
		uc.logger.Info().Str("conversion_id", conversionID).Msg("conversion already compensated, ignoring")
		return nil
	}

	now := time.Now().UTC()
	if err := uc.conversionRepo.MarkRefunded(txCtx, tx, conversionID, now); err != nil {
		return err
	}

	if _, err := uc.creditUC.CompensateTx(txCtx, tx, conversion.AccountID, uc.cost, "Refund for failed conversion"); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ConversionsCompensated.Inc()
	}

	return nil
}

// GetConversion retrieves a conversion by id.
func (uc *ConversionUseCase) GetConversion(ctx context.Context, id string) (*domain.Conversion, error) {
	return uc.conversionRepo.GetByID(ctx, id)
}
