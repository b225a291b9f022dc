package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// PromoRepository implements usecase.PromoRepository.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository creates a new PromoRepository.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// Create creates a new promo code.
func (r *PromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO promo_codes (id, code, credits, max_uses, max_uses_per_user, starts_at, expires_at, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		promo.ID,
		promo.Code,
		decimalToNumeric(promo.Credits),
		promo.MaxUses,
		promo.MaxUsesPerUser,
		timeToPgTimestamptz(promo.StartsAt),
		timeToPgTimestamptzOrNull(promo.ExpiresAt),
		promo.Active,
		timeToPgTimestamptz(promo.CreatedAt),
	)

	return err
}

// GetByCodeForUpdate retrieves a promo code with a FOR UPDATE lock. The lock
// serializes concurrent redemptions of the same code.
func (r *PromoRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.PromoCode, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var (
		promo     domain.PromoCode
		credits   pgtype.Numeric
		startsAt  pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)

	err := pgxTx.QueryRow(ctx,
		`SELECT id, code, credits, max_uses, max_uses_per_user, starts_at, expires_at, active, created_at
		 FROM promo_codes WHERE code = $1 FOR UPDATE`, code).
		Scan(&promo.ID, &promo.Code, &credits, &promo.MaxUses, &promo.MaxUsesPerUser,
			&startsAt, &expiresAt, &promo.Active, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromoCodeNotFound
		}

		return nil, err
	}

	promo.Credits = numericToDecimal(credits)
	promo.StartsAt = startsAt.Time
	if expiresAt.Valid {
		promo.ExpiresAt = expiresAt.Time
	}
	promo.CreatedAt = createdAt.Time

	return &promo, nil
}

// CountRedemptions counts all redemptions of a promo code.
func (r *PromoRepository) CountRedemptions(ctx context.Context, tx usecase.Transaction, promoID string) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var count int

	err := pgxTx.QueryRow(ctx,
		`SELECT COUNT(*) FROM promo_redemptions WHERE promo_code_id = $1`, promoID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountRedemptionsByAccount counts redemptions of a promo code by one account.
func (r *PromoRepository) CountRedemptionsByAccount(ctx context.Context, tx usecase.Transaction, promoID, accountID string) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var count int

	err := pgxTx.QueryRow(ctx,
		`SELECT COUNT(*) FROM promo_redemptions WHERE promo_code_id = $1 AND account_id = $2`,
		promoID, accountID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CreateRedemption records a redemption within a transaction.
func (r *PromoRepository) CreateRedemption(ctx context.Context, tx usecase.Transaction, redemption *domain.Redemption) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO promo_redemptions (id, promo_code_id, account_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		redemption.ID,
		redemption.PromoCodeID,
		redemption.AccountID,
		timeToPgTimestamptz(redemption.CreatedAt),
	)

	return err
}
