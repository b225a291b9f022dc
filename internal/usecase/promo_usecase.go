package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
)

// PromoUseCase redeems promo codes through the same Add path as purchases,
// so promo grants carry every ledger invariant. The code row is locked for
// the duration of the redemption so usage caps hold under concurrency.
type PromoUseCase struct {
	txManager TransactionManager
	promoRepo PromoRepository
	creditUC  *CreditUseCase
	idGen     IDGenerator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewPromoUseCase creates a new PromoUseCase.
func NewPromoUseCase(
	txManager TransactionManager,
	promoRepo PromoRepository,
	creditUC *CreditUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PromoUseCase {
	return &PromoUseCase{
		txManager: txManager,
		promoRepo: promoRepo,
		creditUC:  creditUC,
		idGen:     idGen,
		metrics:   m,
		logger:    logger,
	}
}

// Redeem validates the code against its window and caps, records the
// redemption and grants the credits, all in one transaction.
func (uc *PromoUseCase) Redeem(ctx context.Context, code, accountID string) (decimal.Decimal, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	promo, err := uc.promoRepo.GetByCodeForUpdate(txCtx, tx, code)
	if err != nil {
		return decimal.Zero, err
	}

	totalUses, err := uc.promoRepo.CountRedemptions(txCtx, tx, promo.ID)
	if err != nil {
		return decimal.Zero, err
	}

	userUses, err := uc.promoRepo.CountRedemptionsByAccount(txCtx, tx, promo.ID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	now := time.Now().UTC()
	if err := promo.ValidateRedemption(now, totalUses, userUses); err != nil {
		return decimal.Zero, err
	}

	redemption := &domain.Redemption{
		ID:          uc.idGen.Generate(),
		PromoCodeID: promo.ID,
		AccountID:   accountID,
		CreatedAt:   now,
	}
	if err := uc.promoRepo.CreateRedemption(txCtx, tx, redemption); err != nil {
		return decimal.Zero, err
	}

	entry, err := uc.creditUC.AddTx(txCtx, tx, accountID, promo.Credits, "Promo code: "+promo.Code, "")
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return decimal.Zero, err
	}

	if uc.metrics != nil {
		uc.metrics.PromoRedemptions.Inc()
	}

	uc.logger.Info().
		Str("promo_code", promo.Code).
		Str("account_id", accountID).
		Str("credits", promo.Credits.String()).
		Msg("promo code redeemed")

	return entry.BalanceAfter, nil
}

// CreatePromoInput describes a new promo code.
type CreatePromoInput struct {
	Code           string
	Credits        decimal.Decimal
	MaxUses        int
	MaxUsesPerUser int
	StartsAt       time.Time
	ExpiresAt      time.Time
}

// CreatePromo creates a promo code (administrative).
func (uc *PromoUseCase) CreatePromo(ctx context.Context, input CreatePromoInput) (*domain.PromoCode, error) {
	if err := domain.ValidateAmount(input.Credits); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	startsAt := input.StartsAt
	if startsAt.IsZero() {
		startsAt = now
	}

	promo := &domain.PromoCode{
		ID:             uc.idGen.Generate(),
		Code:           input.Code,
		Credits:        input.Credits,
		MaxUses:        input.MaxUses,
		MaxUsesPerUser: input.MaxUsesPerUser,
		StartsAt:       startsAt,
		ExpiresAt:      input.ExpiresAt,
		Active:         true,
		CreatedAt:      now,
	}

	if err := uc.promoRepo.Create(ctx, promo); err != nil {
		return nil, err
	}

	return promo, nil
}
