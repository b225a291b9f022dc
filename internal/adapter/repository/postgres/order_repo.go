package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, account_id, amount, currency, package_code, credits_purchased,
	status, provider_session_id, provider_payment_id, failure_reason, created_at, updated_at`

// Create creates a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, account_id, amount, currency, package_code, credits_purchased,
		   status, provider_session_id, provider_payment_id, failure_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID,
		order.AccountID,
		decimalToNumeric(order.Amount),
		order.Currency,
		order.PackageCode,
		decimalToNumeric(order.CreditsPurchased),
		string(order.Status),
		stringToPgText(order.ProviderSessionID),
		stringToPgText(order.ProviderPaymentID),
		stringToPgText(order.FailureReason),
		timeToPgTimestamptz(order.CreatedAt),
		timeToPgTimestamptz(order.UpdatedAt),
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	return scanOrder(row)
}

// GetByIDForUpdate retrieves an order by ID with a FOR UPDATE lock.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)

	return scanOrder(row)
}

// GetBySessionIDForUpdate retrieves an order by its checkout session ID with
// a FOR UPDATE lock.
func (r *OrderRepository) GetBySessionIDForUpdate(ctx context.Context, tx usecase.Transaction, sessionID string) (*domain.Order, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE provider_session_id = $1 FOR UPDATE`, sessionID)

	return scanOrder(row)
}

// GetByPaymentIDForUpdate retrieves an order by its provider payment ID with
// a FOR UPDATE lock.
func (r *OrderRepository) GetByPaymentIDForUpdate(ctx context.Context, tx usecase.Transaction, paymentID string) (*domain.Order, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE provider_payment_id = $1 FOR UPDATE`, paymentID)

	return scanOrder(row)
}

// SetSessionID records the checkout session created for an order.
func (r *OrderRepository) SetSessionID(ctx context.Context, id, sessionID string, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET provider_session_id = $2, updated_at = $3 WHERE id = $1`,
		id, sessionID, timeToPgTimestamptz(updatedAt))

	return err
}

// UpdateStatus transitions an order within a transaction. paymentID and
// reason are written only when non-empty, so a refund does not clear the
// original payment reference.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, paymentID, reason string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE orders
		 SET status = $2,
		     provider_payment_id = COALESCE(NULLIF($3, ''), provider_payment_id),
		     failure_reason = COALESCE(NULLIF($4, ''), failure_reason),
		     updated_at = $5
		 WHERE id = $1`,
		id, string(status), paymentID, reason, timeToPgTimestamptz(updatedAt))

	return err
}

// ListByAccount lists orders for an account, newest first.
func (r *OrderRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order         domain.Order
		amount        pgtype.Numeric
		credits       pgtype.Numeric
		status        string
		sessionID     pgtype.Text
		paymentID     pgtype.Text
		failureReason pgtype.Text
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(&order.ID, &order.AccountID, &amount, &order.Currency, &order.PackageCode,
		&credits, &status, &sessionID, &paymentID, &failureReason, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	order.Amount = numericToDecimal(amount)
	order.CreditsPurchased = numericToDecimal(credits)
	order.Status = domain.OrderStatus(status)
	order.ProviderSessionID = sessionID.String
	order.ProviderPaymentID = paymentID.String
	order.FailureReason = failureReason.String
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time

	return &order, nil
}
