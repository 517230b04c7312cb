package domain

import "time"

// LedgerAnchor marks the highest ledger entry already folded into a cached
// balance, by id and by the time the entry occurred. The zero value means
// "nothing included yet" and bounds nothing.
type LedgerAnchor struct {
	At *time.Time
	ID *int64
}

// IsZero reports whether the anchor is unset.
func (a LedgerAnchor) IsZero() bool {
	return a.ID == nil
}

// AtOrBefore reports whether the anchored entry occurred at or before t.
// An unset anchor trivially satisfies any ceiling.
func (a LedgerAnchor) AtOrBefore(t time.Time) bool {
	return a.At == nil || !a.At.After(t)
}

// Precedes reports whether a is no newer than o, so that replacing a
// cache row anchored at a with one anchored at o never loses entries.
func (a LedgerAnchor) Precedes(o LedgerAnchor) bool {
	if a.ID == nil {
		return true
	}
	if o.ID == nil {
		return false
	}

	return *a.ID <= *o.ID
}

// PurchaseEntry is one product line of a purchase, valued at the historical
// price revision active when the purchase occurred. Amount is the positive
// line total; it counts against the payer and towards the payee.
type PurchaseEntry struct {
	OccurredAt time.Time
	Amount     Money
	PurchaseID int64
	PayerID    int64
	PayeeID    int64
}

// TransferEntry is a direct money movement. Exactly one of From/To may be
// nil, representing money entering or leaving the system (top-up, payout).
type TransferEntry struct {
	OccurredAt  time.Time
	FromID      *int64
	ToID        *int64
	Description string
	Amount      Money
	TransferID  int64
}

// Validate checks the structural rules for a transfer entry.
func (t *TransferEntry) Validate() error {
	if t.FromID == nil && t.ToID == nil {
		return ErrMissingCounterparty
	}

	if t.FromID != nil && t.ToID != nil && *t.FromID == *t.ToID {
		return ErrSameAccount
	}

	if t.Amount.Amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}
