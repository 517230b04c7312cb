package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/saldopos/saldo/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the ledger does not conserve money.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match external transfers")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledger LedgerSource
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledger LedgerSource) *LedgerUseCase {
	return &LedgerUseCase{
		ledger: ledger,
	}
}

// PurchaseEntries lists purchase entries for the given accounts (nil means
// all), with pagination bounds clamped to safe values.
func (uc *LedgerUseCase) PurchaseEntries(ctx context.Context, accountIDs []int64, limit, offset int) ([]domain.PurchaseEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	entries, err := uc.ledger.PurchaseEntries(ctx, accountIDs, Bounds{}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase entries: %w", err)
	}

	return entries, nil
}

// TransferEntries lists transfer entries for the given accounts.
func (uc *LedgerUseCase) TransferEntries(ctx context.Context, accountIDs []int64, limit, offset int) ([]domain.TransferEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	entries, err := uc.ledger.TransferEntries(ctx, accountIDs, Bounds{}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfer entries: %w", err)
	}

	return entries, nil
}

// CheckConsistency verifies the zero-sum invariant: every purchase and every
// internal transfer contributes equal and opposite amounts to its two
// accounts, so summing all balances must leave exactly the net of external
// (NULL-counterparty) transfers.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	totalBalance, externalNet, err := uc.ledger.ConsistencyTotals(ctx)
	if err != nil {
		return false, err
	}

	diff, err := totalBalance.Sub(externalNet)
	if err != nil {
		return false, err
	}

	if !diff.IsZero() {
		return false, ErrInconsistentLedger
	}

	return true, nil
}
