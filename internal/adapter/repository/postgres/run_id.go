package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDRunIDs generates ULID identifiers for cache rebuild runs. ULIDs sort
// by creation time, which keeps rebuild logs greppable in order.
type ULIDRunIDs struct{}

// NewULIDRunIDs creates a new ULIDRunIDs.
func NewULIDRunIDs() *ULIDRunIDs {
	return &ULIDRunIDs{}
}

// Generate generates a new ULID.
func (g *ULIDRunIDs) Generate() string {
	return ulid.Make().String()
}
