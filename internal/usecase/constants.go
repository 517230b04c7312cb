package usecase

import "time"

const (
	// DefaultAggregateTimeout is the maximum duration for one aggregation
	// read. This prevents long snapshot transactions from holding back
	// vacuum on the entry tables.
	DefaultAggregateTimeout = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
