package dto

// RebuildRequest asks for a cache rebuild for the given accounts, or for
// every account with ledger activity when account_ids is absent.
type RebuildRequest struct {
	AccountIDs []int64 `json:"account_ids,omitempty"`
}

// InvalidateRequest asks for cache rows to be dropped.
type InvalidateRequest struct {
	AccountIDs []int64 `json:"account_ids,omitempty"`
}
