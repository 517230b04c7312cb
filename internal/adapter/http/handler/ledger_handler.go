package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/saldopos/saldo/internal/adapter/http/dto"
	"github.com/saldopos/saldo/internal/domain"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
	PurchaseEntries(ctx context.Context, accountIDs []int64, limit, offset int) ([]domain.PurchaseEntry, error)
	TransferEntries(ctx context.Context, accountIDs []int64, limit, offset int) ([]domain.TransferEntry, error)
}

// LedgerHandler handles ledger-level HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	record   func(consistent bool)
}

// NewLedgerHandler creates a new LedgerHandler. record may be nil.
func NewLedgerHandler(ledgerUC LedgerService, record func(consistent bool)) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC: ledgerUC,
		record:   record,
	}
}

// Consistency reports whether the sum of all balances matches the net of
// external movements.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "consistency check failed", err.Error())
		return
	}

	if h.record != nil {
		h.record(consistent)
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: consistent})
}

// Entries lists raw ledger entries, optionally filtered by account ids and
// paginated with limit/offset.
func (h *LedgerHandler) Entries(w http.ResponseWriter, r *http.Request) {
	accountIDs, err := parseAccountIDs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_ids", err.Error())
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination", err.Error())
		return
	}

	purchases, err := h.ledgerUC.PurchaseEntries(r.Context(), accountIDs, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list purchase entries", err.Error())
		return
	}

	transfers, err := h.ledgerUC.TransferEntries(r.Context(), accountIDs, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfer entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(purchases, transfers))
}

func parsePagination(r *http.Request) (limit, offset int, err error) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	return limit, offset, nil
}
