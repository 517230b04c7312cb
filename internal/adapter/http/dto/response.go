package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saldopos/saldo/internal/domain"
)

// ErrorResponse is the shape of every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BalanceResponse represents one account balance. Amount is the decimal
// value; AmountMinor the raw minor-unit integer the engine computes with.
type BalanceResponse struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	Precision   int32           `json:"precision"`
	AsOf        *time.Time      `json:"as_of,omitempty"`
}

// BalanceFromDomain converts a computed balance to a response.
func BalanceFromDomain(accountID int64, m domain.Money, asOf *time.Time) *BalanceResponse {
	return &BalanceResponse{
		AccountID:   accountID,
		Amount:      m.Decimal(),
		AmountMinor: m.Amount,
		Currency:    m.Currency,
		Precision:   m.Precision,
		AsOf:        asOf,
	}
}

// ListBalancesResponse carries a batch of balances. Accounts that failed in
// isolation are reported in Errors without suppressing the rest.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Errors   []string           `json:"errors,omitempty"`
}

// BalancesFromDomain converts a balance map to a response sorted by account id.
func BalancesFromDomain(balances map[int64]domain.Money, asOf *time.Time) []*BalanceResponse {
	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*BalanceResponse, len(ids))
	for i, id := range ids {
		result[i] = BalanceFromDomain(id, balances[id], asOf)
	}

	return result
}

// RebuildResponse describes a completed rebuild run.
type RebuildResponse struct {
	RunID      string   `json:"run_id"`
	Accounts   int      `json:"accounts"`
	DurationMS int64    `json:"duration_ms"`
	Errors     []string `json:"errors,omitempty"`
}

// ConsistencyResponse reports whether ledger entries and balances agree.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// PurchaseEntryResponse is one purchase line item at its historical price.
type PurchaseEntryResponse struct {
	PurchaseID  int64           `json:"purchase_id"`
	PayerID     int64           `json:"payer_id"`
	PayeeID     int64           `json:"payee_id"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// TransferEntryResponse is one transfer; a nil counterparty marks money
// entering or leaving the system.
type TransferEntryResponse struct {
	TransferID  int64           `json:"transfer_id"`
	FromID      *int64          `json:"from_id"`
	ToID        *int64          `json:"to_id"`
	Amount      decimal.Decimal `json:"amount"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// EntriesResponse carries one page of raw ledger entries.
type EntriesResponse struct {
	Purchases []PurchaseEntryResponse `json:"purchases"`
	Transfers []TransferEntryResponse `json:"transfers"`
}

// EntriesFromDomain converts ledger entries to a response page.
func EntriesFromDomain(purchases []domain.PurchaseEntry, transfers []domain.TransferEntry) *EntriesResponse {
	resp := &EntriesResponse{
		Purchases: make([]PurchaseEntryResponse, len(purchases)),
		Transfers: make([]TransferEntryResponse, len(transfers)),
	}

	for i, p := range purchases {
		resp.Purchases[i] = PurchaseEntryResponse{
			PurchaseID:  p.PurchaseID,
			PayerID:     p.PayerID,
			PayeeID:     p.PayeeID,
			Amount:      p.Amount.Decimal(),
			AmountMinor: p.Amount.Amount,
			Currency:    p.Amount.Currency,
			OccurredAt:  p.OccurredAt,
		}
	}

	for i, t := range transfers {
		resp.Transfers[i] = TransferEntryResponse{
			TransferID:  t.TransferID,
			FromID:      t.FromID,
			ToID:        t.ToID,
			Amount:      t.Amount.Decimal(),
			AmountMinor: t.Amount.Amount,
			Currency:    t.Amount.Currency,
			Description: t.Description,
			OccurredAt:  t.OccurredAt,
		}
	}

	return resp
}
