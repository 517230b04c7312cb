package usecase

import (
	"fmt"

	"github.com/saldopos/saldo/internal/domain"
)

// foldSums collapses aggregation groups into one signed total per account.
// An account whose entries span more than one currency or precision is a
// data-integrity violation; it is reported in the failure map and excluded,
// while every other account in the batch folds normally.
func foldSums(sums []AccountSum) (map[int64]domain.Money, map[int64]error) {
	totals := make(map[int64]domain.Money, len(sums))
	failures := make(map[int64]error)

	for _, s := range sums {
		if _, bad := failures[s.AccountID]; bad {
			continue
		}

		cur, ok := totals[s.AccountID]
		if !ok {
			totals[s.AccountID] = s.Amount
			continue
		}

		combined, err := cur.Add(s.Amount)
		if err != nil {
			delete(totals, s.AccountID)
			failures[s.AccountID] = fmt.Errorf("account %d: %w", s.AccountID, err)

			continue
		}

		totals[s.AccountID] = combined
	}

	return totals, failures
}
