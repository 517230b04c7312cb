package domain

import "time"

// CachedBalance is one materialized row of the balance cache: the exact
// signed sum of every purchase and transfer entry for AccountID up to and
// including the two anchors. A missing row means "never computed", which
// readers must treat as a zero amount with unset anchors, never as unknown.
type CachedBalance struct {
	UpdatedAt    time.Time
	Amount       Money
	LastPurchase LedgerAnchor
	LastTransfer LedgerAnchor
	AccountID    int64
}

// UsableAt reports whether the row may serve an as-of query for the given
// date: both anchors must reference entries that occurred at or before it.
// Rows that postdate the date would smuggle newer entries into the answer.
func (c *CachedBalance) UsableAt(asOf time.Time) bool {
	return c.LastPurchase.AtOrBefore(asOf) && c.LastTransfer.AtOrBefore(asOf)
}

// SupersededBy reports whether replacing c with n keeps both anchors
// monotonic non-decreasing.
func (c *CachedBalance) SupersededBy(n *CachedBalance) bool {
	return c.LastPurchase.Precedes(n.LastPurchase) && c.LastTransfer.Precedes(n.LastTransfer)
}
