package integration

import (
	"context"
	"testing"

	"github.com/saldopos/saldo/tests/testutil"
)

func TestRebuildThenIncrementalRead(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	customer := testDB.CreateAccount(ctx, "customer")
	bar := testDB.CreateAccount(ctx, "bar")
	beer := testDB.CreateProduct(ctx, "beer", 90, "EUR")

	testDB.CreateTransfer(ctx, nil, &customer, 1000, "EUR")
	testDB.CreatePurchase(ctx, customer, bar, beer, 1, 3)

	balances, rebuild := newEngine(testDB)

	result, err := rebuild.Rebuild(ctx, nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if result.Accounts != 2 {
		t.Fatalf("rebuild covered %d accounts, want 2", result.Accounts)
	}

	// New activity after the rebuild must flow into reads via the
	// incremental path on top of the cached base.
	testDB.CreatePurchase(ctx, customer, bar, beer, 1, 2)

	got, err := balances.GetBalance(ctx, customer, nil)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got.Amount != 550 {
		t.Errorf("customer balance = %d, want 550", got.Amount)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	customer := testDB.CreateAccount(ctx, "customer")
	testDB.CreateTransfer(ctx, nil, &customer, 400, "EUR")

	balances, rebuild := newEngine(testDB)

	for i := 0; i < 3; i++ {
		if _, err := rebuild.Rebuild(ctx, []int64{customer}); err != nil {
			t.Fatalf("rebuild %d: %v", i, err)
		}
	}

	got, err := balances.GetBalance(ctx, customer, nil)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got.Amount != 400 {
		t.Errorf("balance = %d, want 400", got.Amount)
	}
}

func TestInvalidateFallsBackToFullScan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	customer := testDB.CreateAccount(ctx, "customer")
	testDB.CreateTransfer(ctx, nil, &customer, 400, "EUR")

	balances, rebuild := newEngine(testDB)

	if _, err := rebuild.Rebuild(ctx, []int64{customer}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if err := rebuild.Invalidate(ctx, []int64{customer}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	got, err := balances.GetBalance(ctx, customer, nil)
	if err != nil {
		t.Fatalf("get balance after invalidate: %v", err)
	}
	if got.Amount != 400 {
		t.Errorf("balance = %d, want 400", got.Amount)
	}
}

func TestExplicitRebuildWritesVerifiedEmptyRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	idle := testDB.CreateAccount(ctx, "idle")

	balances, rebuild := newEngine(testDB)

	result, err := rebuild.Rebuild(ctx, []int64{idle})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if result.Accounts != 1 {
		t.Fatalf("rebuild covered %d accounts, want 1", result.Accounts)
	}

	got, err := balances.GetBalance(ctx, idle, nil)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero balance, got %v", got)
	}

	// The verified-empty row must not break the read once the account
	// sees its first real entry.
	testDB.CreateTransfer(ctx, nil, &idle, 500, "EUR")

	got, err = balances.GetBalance(ctx, idle, nil)
	if err != nil {
		t.Fatalf("get balance after first entry: %v", err)
	}
	if got.Amount != 500 || got.Currency != "EUR" {
		t.Errorf("balance after first entry = %v, want 5 EUR", got)
	}
}
