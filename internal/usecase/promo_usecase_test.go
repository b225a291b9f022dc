package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
	"github.com/snap2code/creditledger/internal/usecase/mocks"
)

func newPromoFixture(t *testing.T) (*mocks.MockAccountRepository, *mocks.MockEntryRepository, *mocks.MockPromoRepository, *usecase.PromoUseCase) {
	t.Helper()

	accRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	promoRepo := mocks.NewMockPromoRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	creditUC := usecase.NewCreditUseCase(txMgr, accRepo, entryRepo, idGen, nil, nil, zerolog.Nop())
	uc := usecase.NewPromoUseCase(txMgr, promoRepo, creditUC, idGen, nil, zerolog.Nop())

	return accRepo, entryRepo, promoRepo, uc
}

func TestPromoUseCase_Redeem(t *testing.T) {
	accRepo, entryRepo, promoRepo, uc := newPromoFixture(t)

	accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(2)})
	promoRepo.Put(&domain.PromoCode{
		ID:      "promo-1",
		Code:    "WELCOME10",
		Credits: decimal.NewFromInt(10),
		Active:  true,
	})

	balance, err := uc.Redeem(context.Background(), "WELCOME10", "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(12)) {
		t.Errorf("balance = %s, want 12", balance)
	}

	entries := entryRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Description != "Promo code: WELCOME10" {
		t.Errorf("description = %q", entries[0].Description)
	}
}

func TestPromoUseCase_Redeem_Errors(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		promo     *domain.PromoCode
		priorUses int
		errorType error
	}{
		{
			name:      "unknown code",
			promo:     nil,
			errorType: domain.ErrPromoCodeNotFound,
		},
		{
			name: "inactive code",
			promo: &domain.PromoCode{
				ID: "promo-1", Code: "X", Credits: decimal.NewFromInt(5), Active: false,
			},
			errorType: domain.ErrPromoCodeInactive,
		},
		{
			name: "expired code",
			promo: &domain.PromoCode{
				ID: "promo-1", Code: "X", Credits: decimal.NewFromInt(5), Active: true,
				ExpiresAt: now.Add(-time.Hour),
			},
			errorType: domain.ErrPromoCodeExpired,
		},
		{
			name: "not yet started",
			promo: &domain.PromoCode{
				ID: "promo-1", Code: "X", Credits: decimal.NewFromInt(5), Active: true,
				StartsAt: now.Add(time.Hour),
			},
			errorType: domain.ErrPromoCodeInactive,
		},
		{
			name: "global cap reached",
			promo: &domain.PromoCode{
				ID: "promo-1", Code: "X", Credits: decimal.NewFromInt(5), Active: true,
				MaxUses: 1,
			},
			priorUses: 1,
			errorType: domain.ErrPromoCodeExhausted,
		},
		{
			name: "per-user cap reached",
			promo: &domain.PromoCode{
				ID: "promo-1", Code: "X", Credits: decimal.NewFromInt(5), Active: true,
				MaxUsesPerUser: 1,
			},
			priorUses: 1,
			errorType: domain.ErrPromoCodeAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accRepo, entryRepo, promoRepo, uc := newPromoFixture(t)
			accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.Zero})

			if tt.promo != nil {
				promoRepo.Put(tt.promo)
				for i := 0; i < tt.priorUses; i++ {
					_ = promoRepo.CreateRedemption(context.Background(), nil, &domain.Redemption{
						ID: "red-1", PromoCodeID: tt.promo.ID, AccountID: "acc-1",
					})
				}
			}

			_, err := uc.Redeem(context.Background(), "X", "acc-1")
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}
			if len(entryRepo.Entries()) != 0 {
				t.Error("refused redemption must not write a ledger entry")
			}
		})
	}
}

func TestPromoUseCase_CreatePromo(t *testing.T) {
	_, _, promoRepo, uc := newPromoFixture(t)

	promo, err := uc.CreatePromo(context.Background(), usecase.CreatePromoInput{
		Code:    "LAUNCH",
		Credits: decimal.NewFromInt(25),
		MaxUses: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !promo.Active {
		t.Error("new promo must be active")
	}
	if promo.StartsAt.IsZero() {
		t.Error("StartsAt must default to now")
	}

	stored, err := promoRepo.GetByCodeForUpdate(context.Background(), nil, "LAUNCH")
	if err != nil || stored.ID != promo.ID {
		t.Errorf("promo not stored: %v", err)
	}
}

func TestPromoUseCase_CreatePromo_InvalidCredits(t *testing.T) {
	_, _, _, uc := newPromoFixture(t)

	_, err := uc.CreatePromo(context.Background(), usecase.CreatePromoInput{
		Code:    "FREE",
		Credits: decimal.Zero,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
