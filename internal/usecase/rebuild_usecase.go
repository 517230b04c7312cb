package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saldopos/saldo/internal/domain"
	"github.com/saldopos/saldo/internal/infrastructure/logging"
)

// RebuildUseCase recomputes and atomically replaces balance cache rows.
// It is invoked explicitly (API, CLI, operational scripts); nothing in the
// engine triggers it on ledger writes, because the read path stays correct
// against an arbitrarily stale cache.
type RebuildUseCase struct {
	ledger  LedgerSource
	cache   BalanceCacheStore
	retrier Retrier
	runIDs  RunIDGenerator
	instr   Instrumentation
	lock    RebuildLock
	lockTTL time.Duration
	zero    domain.Money
	timeout time.Duration
}

// NewRebuildUseCase creates a new RebuildUseCase. retrier and instr may be nil.
func NewRebuildUseCase(
	ledger LedgerSource,
	cache BalanceCacheStore,
	retrier Retrier,
	runIDs RunIDGenerator,
	instr Instrumentation,
) *RebuildUseCase {
	return &RebuildUseCase{
		ledger:  ledger,
		cache:   cache,
		retrier: retrier,
		runIDs:  runIDs,
		instr:   instr,
	}
}

// WithLock makes Rebuild take a distributed lock for the duration of the
// run, failing with domain.ErrRebuildInProgress when another run holds it.
func (uc *RebuildUseCase) WithLock(lock RebuildLock, ttl time.Duration) *RebuildUseCase {
	uc.lock = lock
	uc.lockTTL = ttl

	return uc
}

// WithDefaultUnit sets the currency a verified-empty cache row is written
// in. Without it a zero-activity account would be cached unit-less, and the
// currency column cannot represent "no currency".
func (uc *RebuildUseCase) WithDefaultUnit(currency string, precision int32) *RebuildUseCase {
	uc.zero = domain.Zero(currency, precision)

	return uc
}

// WithTimeout bounds each rebuild run. Hitting the deadline means "not
// guaranteed complete, cache possibly partially updated", which the read
// path tolerates.
func (uc *RebuildUseCase) WithTimeout(d time.Duration) *RebuildUseCase {
	uc.timeout = d

	return uc
}

// RebuildResult describes one completed rebuild run.
type RebuildResult struct {
	RunID    string
	Accounts int
	Duration time.Duration
}

// Rebuild recomputes cache rows for the requested accounts, or for every
// account with ledger activity when accountIDs is nil. Requesting specific
// accounts writes a row even for accounts with zero ledger activity, so
// "verified empty" is distinguishable from "never computed".
//
// Anchors are captured before aggregating: an entry committed in between
// is excluded from the cache and picked up as an incremental entry on the
// next read, never ambiguously half-included.
func (uc *RebuildUseCase) Rebuild(ctx context.Context, accountIDs []int64) (*RebuildResult, error) {
	start := time.Now()

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	result := &RebuildResult{RunID: uc.runIDs.Generate()}
	ctx = logging.ContextWithRunID(ctx, result.RunID)

	if uc.lock != nil {
		ok, err := uc.lock.Acquire(ctx, result.RunID, uc.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire rebuild lock: %w", err)
		}
		if !ok {
			return nil, domain.ErrRebuildInProgress
		}
		defer uc.lock.Release(ctx, result.RunID)
	}

	scope, err := uc.resolveScope(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	if len(scope) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	hwm, err := uc.ledger.HighWaterMarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger high-water marks: %w", err)
	}

	bounds := Bounds{
		UptoPurchaseID: hwm.Purchase.ID,
		UptoTransferID: hwm.Transfer.ID,
	}

	var sums []AccountSum

	aggregate := func() error {
		var err error
		sums, err = uc.ledger.SumEntries(ctx, scope, bounds)

		return err
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, aggregate)
	} else {
		err = aggregate()
	}

	if err != nil {
		return nil, fmt.Errorf("aggregate ledger entries: %w", err)
	}

	totals, failures := foldSums(sums)

	now := time.Now().UTC()
	rows := make([]*domain.CachedBalance, 0, len(scope))
	var failed []error

	for _, id := range scope {
		if err, bad := failures[id]; bad {
			failed = append(failed, err)
			continue
		}

		amount, active := totals[id]
		if !active {
			// Verified empty. Write the row in the configured unit so the
			// account's first real entry folds in cleanly.
			amount = uc.zero
		}

		rows = append(rows, &domain.CachedBalance{
			AccountID:    id,
			Amount:       amount,
			LastPurchase: hwm.Purchase,
			LastTransfer: hwm.Transfer,
			UpdatedAt:    now,
		})
	}

	if err := uc.cache.Upsert(ctx, rows); err != nil {
		return nil, fmt.Errorf("store balance cache rows: %w", err)
	}

	result.Accounts = len(rows)
	result.Duration = time.Since(start)

	if uc.instr != nil {
		uc.instr.RebuildCompleted(result.Accounts, result.Duration)
	}

	return result, errors.Join(failed...)
}

// Invalidate deletes cache rows for the given accounts, or every row when
// accountIDs is nil. The next read for an invalidated account falls back
// to a full-history aggregation.
func (uc *RebuildUseCase) Invalidate(ctx context.Context, accountIDs []int64) error {
	if err := uc.cache.Invalidate(ctx, accountIDs); err != nil {
		return fmt.Errorf("invalidate balance cache: %w", err)
	}

	return nil
}

func (uc *RebuildUseCase) resolveScope(ctx context.Context, accountIDs []int64) ([]int64, error) {
	if accountIDs == nil {
		scope, err := uc.ledger.AccountIDsWithEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts with entries: %w", err)
		}

		return scope, nil
	}

	missing, err := uc.ledger.MissingAccounts(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("check accounts: %w", err)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccountNotFound, missing)
	}

	return accountIDs, nil
}
