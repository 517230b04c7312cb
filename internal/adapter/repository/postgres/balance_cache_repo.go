package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saldopos/saldo/internal/domain"
)

// BalanceCacheRepository implements usecase.BalanceCacheStore on the
// balance_cache table. Every write replaces a whole row; the conditional
// upsert makes anchor monotonicity a store-level guarantee instead of an
// application calling convention, so two concurrent rebuilds of the same
// account converge on the fresher anchors no matter the commit order.
type BalanceCacheRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceCacheRepository creates a new BalanceCacheRepository.
func NewBalanceCacheRepository(pool *pgxpool.Pool) *BalanceCacheRepository {
	return &BalanceCacheRepository{pool: pool}
}

const cacheColumns = `account_id, amount, currency, precision,
       last_purchase_id, last_purchase_at, last_transfer_id, last_transfer_at, updated_at`

const getCacheRowQuery = `
SELECT ` + cacheColumns + `
FROM balance_cache
WHERE account_id = @account_id`

// Get returns the cached row for an account, or nil when the balance was
// never computed. Absence means "zero with unset anchors", not "unknown".
func (r *BalanceCacheRepository) Get(ctx context.Context, accountID int64) (*domain.CachedBalance, error) {
	row := r.pool.QueryRow(ctx, getCacheRowQuery, pgx.NamedArgs{"account_id": accountID})

	cached, err := scanCacheRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read balance cache row: %w", err)
	}

	return cached, nil
}

const getCacheBatchQuery = `
SELECT ` + cacheColumns + `
FROM balance_cache
WHERE @account_ids::bigint[] IS NULL OR account_id = ANY(@account_ids)`

// GetBatch returns cached rows keyed by account id; a nil filter returns
// every row.
func (r *BalanceCacheRepository) GetBatch(ctx context.Context, accountIDs []int64) (map[int64]*domain.CachedBalance, error) {
	rows, err := r.pool.Query(ctx, getCacheBatchQuery, pgx.NamedArgs{"account_ids": accountIDs})
	if err != nil {
		return nil, fmt.Errorf("read balance cache rows: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.CachedBalance)

	for rows.Next() {
		cached, err := scanCacheRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance cache row: %w", err)
		}

		out[cached.AccountID] = cached
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read balance cache rows: %w", err)
	}

	return out, nil
}

const upsertCacheRowQuery = `
INSERT INTO balance_cache (` + cacheColumns + `)
VALUES (@account_id, @amount, @currency, @precision,
        @last_purchase_id, @last_purchase_at, @last_transfer_id, @last_transfer_at, @updated_at)
ON CONFLICT (account_id) DO UPDATE SET
    amount           = EXCLUDED.amount,
    currency         = EXCLUDED.currency,
    precision        = EXCLUDED.precision,
    last_purchase_id = EXCLUDED.last_purchase_id,
    last_purchase_at = EXCLUDED.last_purchase_at,
    last_transfer_id = EXCLUDED.last_transfer_id,
    last_transfer_at = EXCLUDED.last_transfer_at,
    updated_at       = EXCLUDED.updated_at
WHERE COALESCE(balance_cache.last_purchase_id, -1) <= COALESCE(EXCLUDED.last_purchase_id, -1)
  AND COALESCE(balance_cache.last_transfer_id, -1) <= COALESCE(EXCLUDED.last_transfer_id, -1)`

// Upsert atomically replaces each row. Each row is its own statement: a
// caller timing out mid-batch leaves some accounts updated and others not,
// which the read path tolerates. A row whose anchors would move backwards
// updates nothing and is rejected with domain.ErrAnchorRegression.
func (r *BalanceCacheRepository) Upsert(ctx context.Context, rows []*domain.CachedBalance) error {
	for _, row := range rows {
		tag, err := r.pool.Exec(ctx, upsertCacheRowQuery, pgx.NamedArgs{
			"account_id":       row.AccountID,
			"amount":           row.Amount.Amount,
			"currency":         row.Amount.Currency,
			"precision":        row.Amount.Precision,
			"last_purchase_id": anchorID(row.LastPurchase),
			"last_purchase_at": anchorAt(row.LastPurchase),
			"last_transfer_id": anchorID(row.LastTransfer),
			"last_transfer_at": anchorAt(row.LastTransfer),
			"updated_at":       row.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("upsert balance cache row for account %d: %w", row.AccountID, err)
		}

		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account %d: %w", row.AccountID, domain.ErrAnchorRegression)
		}
	}

	return nil
}

const invalidateCacheQuery = `
DELETE FROM balance_cache
WHERE @account_ids::bigint[] IS NULL OR account_id = ANY(@account_ids)`

// Invalidate deletes the given rows, or all rows when accountIDs is nil.
func (r *BalanceCacheRepository) Invalidate(ctx context.Context, accountIDs []int64) error {
	_, err := r.pool.Exec(ctx, invalidateCacheQuery, pgx.NamedArgs{"account_ids": accountIDs})
	if err != nil {
		return fmt.Errorf("invalidate balance cache: %w", err)
	}

	return nil
}

func scanCacheRow(row pgx.Row) (*domain.CachedBalance, error) {
	var (
		cached                 domain.CachedBalance
		amount                 int64
		currency               string
		precision              int32
		purchaseID, transferID pgtype.Int8
		purchaseAt, transferAt pgtype.Timestamptz
	)

	err := row.Scan(
		&cached.AccountID,
		&amount,
		&currency,
		&precision,
		&purchaseID,
		&purchaseAt,
		&transferID,
		&transferAt,
		&cached.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// currency is CHAR(3); a row stored with an empty currency reads back
	// blank-padded, which would no longer be the unit-less identity.
	cached.Amount = domain.NewMoney(amount, strings.TrimSpace(currency), precision)
	cached.LastPurchase = toAnchor(purchaseID, purchaseAt)
	cached.LastTransfer = toAnchor(transferID, transferAt)

	return &cached, nil
}

func anchorID(a domain.LedgerAnchor) *int64 {
	return a.ID
}

func anchorAt(a domain.LedgerAnchor) any {
	if a.At == nil {
		return nil
	}

	return *a.At
}
