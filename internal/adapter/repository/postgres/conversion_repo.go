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

// ConversionRepository implements usecase.ConversionRepository.
type ConversionRepository struct {
	pool *pgxpool.Pool
}

// NewConversionRepository creates a new ConversionRepository.
func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

const conversionColumns = `id, account_id, framework, status, error_message, retry_count, refunded, created_at, updated_at`

// Create creates a new conversion record.
func (r *ConversionRepository) Create(ctx context.Context, conversion *domain.Conversion) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversions (id, account_id, framework, status, error_message, retry_count, refunded, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		conversion.ID,
		conversion.AccountID,
		conversion.Framework,
		string(conversion.Status),
		stringToPgText(conversion.ErrorMessage),
		conversion.RetryCount,
		conversion.Refunded,
		timeToPgTimestamptz(conversion.CreatedAt),
		timeToPgTimestamptz(conversion.UpdatedAt),
	)

	return err
}

// GetByID retrieves a conversion by ID.
func (r *ConversionRepository) GetByID(ctx context.Context, id string) (*domain.Conversion, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+conversionColumns+` FROM conversions WHERE id = $1`, id)

	return scanConversion(row)
}

// GetByIDForUpdate retrieves a conversion by ID with a FOR UPDATE lock.
func (r *ConversionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Conversion, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+conversionColumns+` FROM conversions WHERE id = $1 FOR UPDATE`, id)

	return scanConversion(row)
}

// UpdateStatus updates a conversion's status and retry bookkeeping.
func (r *ConversionRepository) UpdateStatus(ctx context.Context, id string, status domain.ConversionStatus, errorMessage string, retryCount int, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE conversions
		 SET status = $2, error_message = $3, retry_count = $4, updated_at = $5
		 WHERE id = $1`,
		id, string(status), stringToPgText(errorMessage), retryCount, timeToPgTimestamptz(updatedAt))

	return err
}

// MarkRefunded flags a conversion as compensated within a transaction.
func (r *ConversionRepository) MarkRefunded(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE conversions SET refunded = TRUE, updated_at = $2 WHERE id = $1`,
		id, timeToPgTimestamptz(updatedAt))

	return err
}

func scanConversion(row pgx.Row) (*domain.Conversion, error) {
	var (
		conversion   domain.Conversion
		errorMessage pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		status       string
	)

	err := row.Scan(&conversion.ID, &conversion.AccountID, &conversion.Framework, &status,
		&errorMessage, &conversion.RetryCount, &conversion.Refunded, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversionNotFound
		}

		return nil, err
	}

	conversion.Status = domain.ConversionStatus(status)
	conversion.ErrorMessage = errorMessage.String
	conversion.CreatedAt = createdAt.Time
	conversion.UpdatedAt = updatedAt.Time

	return &conversion, nil
}
