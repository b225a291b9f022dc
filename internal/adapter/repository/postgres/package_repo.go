package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snap2code/creditledger/internal/domain"
)

// PackageRepository implements usecase.PackageRepository.
type PackageRepository struct {
	pool *pgxpool.Pool
}

// NewPackageRepository creates a new PackageRepository.
func NewPackageRepository(pool *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{pool: pool}
}

const packageColumns = `id, code, name, description, price, credits, active, display_order, created_at, updated_at`

// GetByCode retrieves a package by its code.
func (r *PackageRepository) GetByCode(ctx context.Context, code string) (*domain.Package, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE code = $1`, code)

	return scanPackage(row)
}

// ListActive lists active packages in display order.
func (r *PackageRepository) ListActive(ctx context.Context) ([]*domain.Package, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+packageColumns+` FROM packages
		 WHERE active = TRUE
		 ORDER BY display_order ASC, code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0)

	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}

		packages = append(packages, pkg)
	}

	return packages, rows.Err()
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var (
		pkg       domain.Package
		price     pgtype.Numeric
		credits   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&pkg.ID, &pkg.Code, &pkg.Name, &pkg.Description, &price, &credits,
		&pkg.Active, &pkg.DisplayOrder, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}

		return nil, err
	}

	pkg.Price = numericToDecimal(price)
	pkg.Credits = numericToDecimal(credits)
	pkg.CreatedAt = createdAt.Time
	pkg.UpdatedAt = updatedAt.Time

	return &pkg, nil
}
