package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account has no ledger identity")

	// Money errors
	ErrCurrencyMismatch = errors.New("cannot combine amounts with different currency or precision")
	ErrInvalidAmount    = errors.New("amount must be positive")

	// Ledger entry errors
	ErrSameAccount         = errors.New("cannot move money to the same account")
	ErrMissingCounterparty = errors.New("transfer needs at least one of sender and receiver")

	// Cache errors
	ErrAnchorRegression  = errors.New("cached balance anchor may not move backwards")
	ErrRebuildInProgress = errors.New("another cache rebuild run holds the lock")
)
