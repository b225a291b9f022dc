package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds an account.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
	}
	return nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	ListByAccountAscFunc func(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
	CountByOrderFunc     func(ctx context.Context, orderID string, kind domain.EntryKind) (int64, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

// Entries returns all recorded entries in insertion order.
func (m *MockEntryRepository) Entries() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID == accountID {
			out = append(out, m.entries[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockEntryRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	if m.ListByAccountAscFunc != nil {
		return m.ListByAccountAscFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockEntryRepository) CountByOrder(ctx context.Context, orderID string, kind domain.EntryKind) (int64, error) {
	if m.CountByOrderFunc != nil {
		return m.CountByOrderFunc(ctx, orderID, kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, e := range m.entries {
		if e.OrderID == orderID && e.Kind == kind {
			count++
		}
	}
	return count, nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	CreateFunc                  func(ctx context.Context, order *domain.Order) error
	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdateFunc        func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error)
	GetBySessionIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, sessionID string) (*domain.Order, error)
	GetByPaymentIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, paymentID string) (*domain.Order, error)
	SetSessionIDFunc            func(ctx context.Context, id, sessionID string, updatedAt time.Time) error
	UpdateStatusFunc            func(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, paymentID, reason string, updatedAt time.Time) error
	ListByAccountFunc           func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// Put seeds an order.
func (m *MockOrderRepository) Put(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

// Get returns a seeded order by id.
func (m *MockOrderRepository) Get(id string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockOrderRepository) GetBySessionIDForUpdate(ctx context.Context, tx usecase.Transaction, sessionID string) (*domain.Order, error) {
	if m.GetBySessionIDForUpdateFunc != nil {
		return m.GetBySessionIDForUpdateFunc(ctx, tx, sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ProviderSessionID == sessionID {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByPaymentIDForUpdate(ctx context.Context, tx usecase.Transaction, paymentID string) (*domain.Order, error) {
	if m.GetByPaymentIDForUpdateFunc != nil {
		return m.GetByPaymentIDForUpdateFunc(ctx, tx, paymentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ProviderPaymentID == paymentID {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) SetSessionID(ctx context.Context, id, sessionID string, updatedAt time.Time) error {
	if m.SetSessionIDFunc != nil {
		return m.SetSessionIDFunc(ctx, id, sessionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.ProviderSessionID = sessionID
		o.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, paymentID, reason string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, paymentID, reason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.Status = status
		if paymentID != "" {
			o.ProviderPaymentID = paymentID
		}
		if reason != "" {
			o.FailureReason = reason
		}
		o.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockOrderRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MockPackageRepository is a mock implementation of PackageRepository.
type MockPackageRepository struct {
	mu       sync.RWMutex
	packages map[string]*domain.Package

	GetByCodeFunc  func(ctx context.Context, code string) (*domain.Package, error)
	ListActiveFunc func(ctx context.Context) ([]*domain.Package, error)
}

func NewMockPackageRepository() *MockPackageRepository {
	return &MockPackageRepository{
		packages: make(map[string]*domain.Package),
	}
}

// Put seeds a package.
func (m *MockPackageRepository) Put(pkg *domain.Package) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[pkg.Code] = pkg
}

func (m *MockPackageRepository) GetByCode(ctx context.Context, code string) (*domain.Package, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pkg, ok := m.packages[code]; ok {
		return pkg, nil
	}
	return nil, domain.ErrPackageNotFound
}

func (m *MockPackageRepository) ListActive(ctx context.Context) ([]*domain.Package, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Package
	for _, pkg := range m.packages {
		if pkg.Active {
			out = append(out, pkg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

// MockPromoRepository is a mock implementation of PromoRepository.
type MockPromoRepository struct {
	mu          sync.RWMutex
	promos      map[string]*domain.PromoCode
	redemptions []*domain.Redemption

	CreateFunc                    func(ctx context.Context, promo *domain.PromoCode) error
	GetByCodeForUpdateFunc        func(ctx context.Context, tx usecase.Transaction, code string) (*domain.PromoCode, error)
	CountRedemptionsFunc          func(ctx context.Context, tx usecase.Transaction, promoID string) (int, error)
	CountRedemptionsByAccountFunc func(ctx context.Context, tx usecase.Transaction, promoID, accountID string) (int, error)
	CreateRedemptionFunc          func(ctx context.Context, tx usecase.Transaction, redemption *domain.Redemption) error
}

func NewMockPromoRepository() *MockPromoRepository {
	return &MockPromoRepository{
		promos: make(map[string]*domain.PromoCode),
	}
}

// Put seeds a promo code.
func (m *MockPromoRepository) Put(promo *domain.PromoCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[promo.Code] = promo
}

func (m *MockPromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, promo)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[promo.Code] = promo
	return nil
}

func (m *MockPromoRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.PromoCode, error) {
	if m.GetByCodeForUpdateFunc != nil {
		return m.GetByCodeForUpdateFunc(ctx, tx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if promo, ok := m.promos[code]; ok {
		return promo, nil
	}
	return nil, domain.ErrPromoCodeNotFound
}

func (m *MockPromoRepository) CountRedemptions(ctx context.Context, tx usecase.Transaction, promoID string) (int, error) {
	if m.CountRedemptionsFunc != nil {
		return m.CountRedemptionsFunc(ctx, tx, promoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.redemptions {
		if r.PromoCodeID == promoID {
			count++
		}
	}
	return count, nil
}

func (m *MockPromoRepository) CountRedemptionsByAccount(ctx context.Context, tx usecase.Transaction, promoID, accountID string) (int, error) {
	if m.CountRedemptionsByAccountFunc != nil {
		return m.CountRedemptionsByAccountFunc(ctx, tx, promoID, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.redemptions {
		if r.PromoCodeID == promoID && r.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

func (m *MockPromoRepository) CreateRedemption(ctx context.Context, tx usecase.Transaction, redemption *domain.Redemption) error {
	if m.CreateRedemptionFunc != nil {
		return m.CreateRedemptionFunc(ctx, tx, redemption)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redemptions = append(m.redemptions, redemption)
	return nil
}

// MockConversionRepository is a mock implementation of ConversionRepository.
type MockConversionRepository struct {
	mu          sync.RWMutex
	conversions map[string]*domain.Conversion

	CreateFunc           func(ctx context.Context, conversion *domain.Conversion) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Conversion, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Conversion, error)
	UpdateStatusFunc     func(ctx context.Context, id string, status domain.ConversionStatus, errorMessage string, retryCount int, updatedAt time.Time) error
	MarkRefundedFunc     func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error
}

func NewMockConversionRepository() *MockConversionRepository {
	return &MockConversionRepository{
		conversions: make(map[string]*domain.Conversion),
	}
}

// Put seeds a conversion.
func (m *MockConversionRepository) Put(conversion *domain.Conversion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions[conversion.ID] = conversion
}

func (m *MockConversionRepository) Create(ctx context.Context, conversion *domain.Conversion) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, conversion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions[conversion.ID] = conversion
	return nil
}

func (m *MockConversionRepository) GetByID(ctx context.Context, id string) (*domain.Conversion, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.conversions[id]; ok {
		return c, nil
	}
	return nil, domain.ErrConversionNotFound
}

func (m *MockConversionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Conversion, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockConversionRepository) UpdateStatus(ctx context.Context, id string, status domain.ConversionStatus, errorMessage string, retryCount int, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, errorMessage, retryCount, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conversions[id]; ok {
		c.Status = status
		c.ErrorMessage = errorMessage
		c.RetryCount = retryCount
		c.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockConversionRepository) MarkRefunded(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	if m.MarkRefundedFunc != nil {
		return m.MarkRefundedFunc(ctx, tx, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conversions[id]; ok {
		c.Refunded = true
		c.UpdatedAt = updatedAt
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}
