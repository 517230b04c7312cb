package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager hands out database transactions. Aggregation reads need a
// repeatable-read snapshot: read committed would let a concurrent writer
// change the ledger between the purchase and transfer legs of one
// aggregate, producing a sum that matches no ledger state at all.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a plain transaction.
func (m *TxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.pool.Begin(ctx)
}

// BeginSnapshot starts a read-only repeatable-read transaction for
// aggregation queries.
func (m *TxManager) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	return m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
}
