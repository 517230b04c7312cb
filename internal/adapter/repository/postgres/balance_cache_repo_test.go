package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saldopos/saldo/internal/domain"
)

func TestUpsertQueryEnforcesMonotonicAnchors(t *testing.T) {
	// The conditional update is the concurrency guard: without the WHERE
	// clause a rebuild holding stale anchors could overwrite fresher rows.
	for _, cond := range []string{
		"COALESCE(balance_cache.last_purchase_id, -1) <= COALESCE(EXCLUDED.last_purchase_id, -1)",
		"COALESCE(balance_cache.last_transfer_id, -1) <= COALESCE(EXCLUDED.last_transfer_id, -1)",
	} {
		if !strings.Contains(upsertCacheRowQuery, cond) {
			t.Errorf("upsert query missing monotonicity condition %q", cond)
		}
	}
}

// stubRow feeds canned column values into scanCacheRow.
type stubRow struct {
	values []any
}

func (r *stubRow) Scan(dest ...any) error {
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int32:
			*d = v.(int32)
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		case *pgtype.Int8:
			*d = v.(pgtype.Int8)
		case *pgtype.Timestamptz:
			*d = v.(pgtype.Timestamptz)
		}
	}

	return nil
}

func TestScanCacheRowTrimsPaddedCurrency(t *testing.T) {
	// A verified-empty row stored before any ledger activity carries an
	// empty currency, which CHAR(3) blank-pads. Read back untrimmed it
	// would stop being the unit-less identity and the first real entry
	// for the account would fail with a currency mismatch.
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &stubRow{values: []any{
		int64(7), int64(0), "   ", int32(0),
		pgtype.Int8{}, pgtype.Timestamptz{}, pgtype.Int8{}, pgtype.Timestamptz{},
		now,
	}}

	cached, err := scanCacheRow(row)
	if err != nil {
		t.Fatalf("scanCacheRow: %v", err)
	}

	if cached.Amount.Currency != "" {
		t.Fatalf("currency = %q, want unit-less", cached.Amount.Currency)
	}

	incr := domain.NewMoney(500, "EUR", 2)
	got, err := cached.Amount.Add(incr)
	if err != nil {
		t.Fatalf("adding first real entry to verified-empty balance: %v", err)
	}
	if got != incr {
		t.Fatalf("balance = %v, want %v", got, incr)
	}
}

func TestAnchorArgs(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := int64(9)

	set := domain.LedgerAnchor{ID: &id, At: &at}
	if got := anchorID(set); got == nil || *got != 9 {
		t.Fatalf("anchorID = %v", got)
	}

	if got := anchorAt(set); got != at {
		t.Fatalf("anchorAt = %v", got)
	}

	unset := domain.LedgerAnchor{}
	if got := anchorID(unset); got != nil {
		t.Fatalf("unset anchorID = %v, want nil", got)
	}

	if got := anchorAt(unset); got != nil {
		t.Fatalf("unset anchorAt = %v, want nil", got)
	}
}
