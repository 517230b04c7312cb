package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saldopos/saldo/internal/domain"
)

// BalanceUseCase is the public read path for account balances. It combines
// a cached row, when one may serve the request, with an incremental
// aggregation over ledger entries newer than the cache's anchors. The cache
// only ever changes the cost of an answer, never the answer itself.
type BalanceUseCase struct {
	ledger LedgerSource
	cache  BalanceCacheStore
	instr  Instrumentation
}

// NewBalanceUseCase creates a new BalanceUseCase. instr may be nil.
func NewBalanceUseCase(ledger LedgerSource, cache BalanceCacheStore, instr Instrumentation) *BalanceUseCase {
	return &BalanceUseCase{
		ledger: ledger,
		cache:  cache,
		instr:  instr,
	}
}

// GetBalance returns the balance of one account, either current (asOf nil)
// or as of a past point in time. An account with no ledger activity has a
// zero balance; an account unknown to the ledger is an error.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
	balances, err := uc.GetBalances(ctx, []int64{accountID}, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	return balances[accountID], nil
}

// GetBalances is the batched form of GetBalance. A nil account set means
// every known account. Results are consistent with calling GetBalance for
// each account individually. A per-account failure (currency mismatch)
// excludes only that account; its error is joined into the returned error
// while the rest of the batch completes.
func (uc *BalanceUseCase) GetBalances(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
	scope, err := uc.resolveScope(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	rows, err := uc.cache.GetBatch(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("read balance cache: %w", err)
	}

	// Accounts sharing the same cache anchors can be aggregated in one
	// query, so group by anchor pair. Cache misses (and rows unusable for
	// the requested date) form the unanchored group and pay for a full
	// history scan bounded only by asOf.
	groups := make(map[anchorKey][]int64)
	base := make(map[int64]domain.Money, len(scope))

	for _, id := range scope {
		row, ok := rows[id]

		usable := ok && (asOf == nil || row.UsableAt(*asOf))
		if uc.instr != nil {
			uc.instr.BalanceLookup(usable)
		}

		if !usable {
			groups[anchorKey{}] = append(groups[anchorKey{}], id)
			continue
		}

		key := anchorKeyFor(row)
		groups[key] = append(groups[key], id)
		base[id] = row.Amount
	}

	result := make(map[int64]domain.Money, len(scope))
	var failed []error

	for key, ids := range groups {
		b := key.bounds()
		b.UptoDate = asOf

		sums, err := uc.ledger.SumEntries(ctx, ids, b)
		if err != nil {
			return nil, fmt.Errorf("aggregate ledger entries: %w", err)
		}

		totals, failures := foldSums(sums)

		for _, id := range ids {
			if err, bad := failures[id]; bad {
				failed = append(failed, err)
				continue
			}

			balance, err := base[id].Add(totals[id])
			if err != nil {
				// Cached currency disagreeing with newly aggregated
				// entries is an invariant violation, never papered over.
				failed = append(failed, fmt.Errorf("account %d: cache vs ledger: %w", id, err))
				continue
			}

			result[id] = balance
		}
	}

	return result, errors.Join(failed...)
}

func (uc *BalanceUseCase) resolveScope(ctx context.Context, accountIDs []int64) ([]int64, error) {
	if accountIDs == nil {
		scope, err := uc.ledger.AccountIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
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

// anchorKey is a comparable form of a cache row's anchor pair. The zero
// value is the unanchored (full history) group.
type anchorKey struct {
	purchaseID int64
	transferID int64
	hasAnchors bool
}

func anchorKeyFor(row *domain.CachedBalance) anchorKey {
	key := anchorKey{hasAnchors: true}

	if row.LastPurchase.ID != nil {
		key.purchaseID = *row.LastPurchase.ID
	} else {
		key.purchaseID = -1
	}

	if row.LastTransfer.ID != nil {
		key.transferID = *row.LastTransfer.ID
	} else {
		key.transferID = -1
	}

	return key
}

func (k anchorKey) bounds() Bounds {
	var b Bounds

	if !k.hasAnchors {
		return b
	}

	if k.purchaseID >= 0 {
		pid := k.purchaseID
		b.AfterPurchaseID = &pid
	}

	if k.transferID >= 0 {
		tid := k.transferID
		b.AfterTransferID = &tid
	}

	return b
}
