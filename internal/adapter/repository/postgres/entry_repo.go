package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. The ledger_entries
// table is append-only: this repository exposes no update or delete.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, account_id, order_id, amount, balance_after, kind, description, created_at`

// Create inserts a ledger entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO ledger_entries (id, account_id, order_id, amount, balance_after, kind, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.AccountID,
		stringToPgText(entry.OrderID),
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.BalanceAfter),
		string(entry.Kind),
		entry.Description,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// ListByAccount lists entries for an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByAccountAsc lists all entries for an account in creation order, for
// balance replay.
func (r *EntryRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE account_id = $1
		 ORDER BY created_at ASC, id ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountByOrder counts entries of a kind tied to an order.
func (r *EntryRepository) CountByOrder(ctx context.Context, orderID string, kind domain.EntryKind) (int64, error) {
	var count int64

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE order_id = $1 AND kind = $2`,
		orderID, string(kind)).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	entries := make([]*domain.LedgerEntry, 0)

	for rows.Next() {
		var (
			entry        domain.LedgerEntry
			orderID      pgtype.Text
			amount       pgtype.Numeric
			balanceAfter pgtype.Numeric
			kind         string
			createdAt    pgtype.Timestamptz
		)

		err := rows.Scan(&entry.ID, &entry.AccountID, &orderID, &amount, &balanceAfter, &kind, &entry.Description, &createdAt)
		if err != nil {
			return nil, err
		}

		entry.OrderID = orderID.String
		entry.Amount = numericToDecimal(amount)
		entry.BalanceAfter = numericToDecimal(balanceAfter)
		entry.Kind = domain.EntryKind(kind)
		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
