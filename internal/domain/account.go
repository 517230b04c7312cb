package domain

import "time"

// Account identifies a balance-holding party. The engine only references
// accounts by id; ownership of the account lifecycle lives elsewhere.
type Account struct {
	CreatedAt time.Time
	Name      string
	ID        int64
	Active    bool
}
