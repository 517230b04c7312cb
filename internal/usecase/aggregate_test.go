package usecase

import (
	"errors"
	"testing"

	"github.com/saldopos/saldo/internal/domain"
)

func TestFoldSums(t *testing.T) {
	sums := []AccountSum{
		{AccountID: 1, Amount: domain.NewMoney(100, "EUR", 2)},
		{AccountID: 2, Amount: domain.NewMoney(-30, "EUR", 2)},
		{AccountID: 2, Amount: domain.NewMoney(10, "USD", 2)},
		{AccountID: 3, Amount: domain.NewMoney(5, "EUR", 2)},
		{AccountID: 2, Amount: domain.NewMoney(1, "EUR", 2)},
	}

	totals, failures := foldSums(sums)

	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", failures)
	}

	if !errors.Is(failures[2], domain.ErrCurrencyMismatch) {
		t.Fatalf("failure for account 2 = %v", failures[2])
	}

	if _, ok := totals[2]; ok {
		t.Error("failed account must be excluded from totals")
	}

	if totals[1].Amount != 100 || totals[3].Amount != 5 {
		t.Errorf("totals = %v", totals)
	}
}

func TestFoldSums_LaterGroupsOfFailedAccountIgnored(t *testing.T) {
	sums := []AccountSum{
		{AccountID: 1, Amount: domain.NewMoney(1, "EUR", 2)},
		{AccountID: 1, Amount: domain.NewMoney(1, "USD", 2)},
		{AccountID: 1, Amount: domain.NewMoney(1, "EUR", 2)},
	}

	totals, failures := foldSums(sums)

	if len(totals) != 0 {
		t.Errorf("totals = %v, want empty", totals)
	}

	if failures[1] == nil {
		t.Error("expected failure for account 1")
	}
}
