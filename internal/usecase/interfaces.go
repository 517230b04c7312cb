package usecase

import (
	"context"
	"time"

	"github.com/saldopos/saldo/internal/domain"
)

// Bounds limits which ledger entries a read may observe. Lower anchors are
// exclusive (entries strictly newer than an already-cached anchor), upper
// anchors and the date ceiling are inclusive. A nil field means unbounded.
type Bounds struct {
	AfterPurchaseID *int64
	AfterTransferID *int64
	UptoPurchaseID  *int64
	UptoTransferID  *int64
	UptoDate        *time.Time
}

// HighWaterMarks is a single snapshot of the ledger's current maximum
// purchase and transfer ids with their timestamps.
type HighWaterMarks struct {
	Purchase domain.LedgerAnchor
	Transfer domain.LedgerAnchor
}

// AccountSum is one aggregation group: the signed entry total for an
// account in one currency/precision. An account whose entries span more
// than one unit produces several groups, which the aggregator rejects.
type AccountSum struct {
	Amount    domain.Money
	AccountID int64
}

// LedgerSource is the read-only view over the append-only ledger: purchase
// entries derived from transaction line items at their historical prices,
// and transfer entries. Writers live elsewhere; this side never mutates.
type LedgerSource interface {
	// PurchaseEntries returns purchase entries within bounds. Ordering is
	// not guaranteed; callers must not depend on it.
	PurchaseEntries(ctx context.Context, accountIDs []int64, b Bounds, limit, offset int) ([]domain.PurchaseEntry, error)
	// TransferEntries returns transfer entries within bounds.
	TransferEntries(ctx context.Context, accountIDs []int64, b Bounds, limit, offset int) ([]domain.TransferEntry, error)
	// SumEntries returns the signed per-account entry totals within bounds,
	// grouped by currency and precision. Accounts without entries are absent.
	// The read must observe a consistent snapshot of the ledger.
	SumEntries(ctx context.Context, accountIDs []int64, b Bounds) ([]AccountSum, error)
	// HighWaterMarks reads the current maximum ledger ids in one snapshot.
	HighWaterMarks(ctx context.Context) (HighWaterMarks, error)
	// AccountIDs lists every known account id.
	AccountIDs(ctx context.Context) ([]int64, error)
	// AccountIDsWithEntries lists accounts that appear in at least one
	// purchase or transfer entry.
	AccountIDsWithEntries(ctx context.Context) ([]int64, error)
	// MissingAccounts returns which of the given ids have no account row.
	MissingAccounts(ctx context.Context, accountIDs []int64) ([]int64, error)
	// ConsistencyTotals returns the signed sum of all entry contributions
	// across every account, and the net amount of external transfers
	// (NULL-counterparty top-ups minus payouts). A conserved ledger has
	// the two equal.
	ConsistencyTotals(ctx context.Context) (totalBalance, externalNet domain.Money, err error)
}

// BalanceCacheStore persists one materialized balance row per account.
// Rows are replaced whole, never merged, and anchors only move forward.
type BalanceCacheStore interface {
	// Get returns the cached row, or nil if the account was never computed.
	Get(ctx context.Context, accountID int64) (*domain.CachedBalance, error)
	// GetBatch returns cached rows keyed by account id. A nil filter
	// returns every row.
	GetBatch(ctx context.Context, accountIDs []int64) (map[int64]*domain.CachedBalance, error)
	// Upsert atomically replaces each row. A row whose anchors would move
	// backwards is rejected with domain.ErrAnchorRegression.
	Upsert(ctx context.Context, rows []*domain.CachedBalance) error
	// Invalidate deletes the given rows, or all rows when nil.
	Invalidate(ctx context.Context, accountIDs []int64) error
}

// Retrier retries an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// RebuildLock serializes rebuild runs across instances. Acquire returns
// false when another run holds the lock.
type RebuildLock interface {
	Acquire(ctx context.Context, runID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, runID string) error
}

// RunIDGenerator generates unique identifiers for rebuild runs.
type RunIDGenerator interface {
	Generate() string
}

// Instrumentation receives engine-level measurements. Implementations must
// be safe for concurrent use; a nil Instrumentation is a no-op.
type Instrumentation interface {
	BalanceLookup(cacheHit bool)
	RebuildCompleted(accounts int, duration time.Duration)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
