package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
)

// AccountUseCase handles account lifecycle. Balance mutations live in
// CreditUseCase; this only creates and reads.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, logger zerolog.Logger) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		logger:      logger,
	}
}

// CreateAccount creates an account with a zero balance. Credits arrive only
// through purchases, promo codes or adjustments.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, email string) (*domain.Account, error) {
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Email:     email,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("account_id", account.ID).Msg("account created")

	return account, nil
}

// GetAccount retrieves an account by id.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}
