package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/payment"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// EntryRepository defines data access for ledger entries. Entries are
// append-only; there is deliberately no update or delete.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
	CountByOrder(ctx context.Context, orderID string, kind domain.EntryKind) (int64, error)
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Order, error)
	GetBySessionIDForUpdate(ctx context.Context, tx Transaction, sessionID string) (*domain.Order, error)
	GetByPaymentIDForUpdate(ctx context.Context, tx Transaction, paymentID string) (*domain.Order, error)
	SetSessionID(ctx context.Context, id, sessionID string, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.OrderStatus, paymentID, reason string, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error)
}

// PackageRepository defines data access for purchasable credit bundles.
type PackageRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Package, error)
	ListActive(ctx context.Context) ([]*domain.Package, error)
}

// PromoRepository defines data access for promo codes and redemptions.
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	GetByCodeForUpdate(ctx context.Context, tx Transaction, code string) (*domain.PromoCode, error)
	CountRedemptions(ctx context.Context, tx Transaction, promoID string) (int, error)
	CountRedemptionsByAccount(ctx context.Context, tx Transaction, promoID, accountID string) (int, error)
	CreateRedemption(ctx context.Context, tx Transaction, redemption *domain.Redemption) error
}

// ConversionRepository defines data access for conversion attempts.
type ConversionRepository interface {
	Create(ctx context.Context, conversion *domain.Conversion) error
	GetByID(ctx context.Context, id string) (*domain.Conversion, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Conversion, error)
	UpdateStatus(ctx context.Context, id string, status domain.ConversionStatus, errorMessage string, retryCount int, updatedAt time.Time) error
	MarkRefunded(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PaymentProvider is the external payment service. Checkout metadata carries
// the order correlation keys echoed back in webhook events.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, order *domain.Order, pkg *domain.Package, email string) (*payment.CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentID, reason string) error
}

// Notifier delivers out-of-band account notifications. Implementations must
// be safe to call from a goroutine after the triggering transaction commits;
// a notification failure never affects the ledger.
type Notifier interface {
	NotifyLowBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
}

// EventStore deduplicates provider webhook events by id.
type EventStore interface {
	// MarkProcessed returns false if the event id was already recorded.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	// Unmark releases a recorded event id so a redelivery is processed again.
	Unmark(ctx context.Context, eventID string) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Converter is the external screenshot-to-code service. The ledger treats it
// as opaque: it either returns generated code or an error.
type Converter interface {
	Convert(ctx context.Context, conversion *domain.Conversion) error
}
