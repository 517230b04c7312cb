package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saldopos/saldo/internal/adapter/http/dto"
	"github.com/saldopos/saldo/internal/domain"
	"github.com/saldopos/saldo/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error)
	GetBalances(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error)
}

// RebuildService defines the cache maintenance behavior needed by BalanceHandler.
type RebuildService interface {
	Rebuild(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error)
	Invalidate(ctx context.Context, accountIDs []int64) error
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
	rebuildUC RebuildService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, rebuildUC RebuildService) *BalanceHandler {
	return &BalanceHandler{
		balanceUC: balanceUC,
		rebuildUC: rebuildUC,
	}
}

// Get returns one account balance, optionally as of a point in time.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of timestamp", err.Error())
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), accountID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(accountID, balance, asOf))
}

// List returns balances for the requested accounts, or for every account
// when account_ids is absent. Accounts that fail in isolation are reported
// alongside the rest.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	accountIDs, err := parseAccountIDs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_ids", err.Error())
		return
	}

	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of timestamp", err.Error())
		return
	}

	balances, err := h.balanceUC.GetBalances(r.Context(), accountIDs, asOf)
	if err != nil && errors.Is(err, domain.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "unknown account", err.Error())
		return
	}
	if err != nil && len(balances) == 0 {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(balances, asOf),
		Errors:   splitErrors(err),
	})
}

// Rebuild recomputes cache rows for the requested accounts.
func (h *BalanceHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req dto.RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.rebuildUC.Rebuild(r.Context(), req.AccountIDs)
	if result == nil {
		writeError(w, mapDomainError(err), "rebuild failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RebuildResponse{
		RunID:      result.RunID,
		Accounts:   result.Accounts,
		DurationMS: result.Duration.Milliseconds(),
		Errors:     splitErrors(err),
	})
}

// InvalidateCache drops cache rows for the requested accounts, or all rows
// when the body names none.
func (h *BalanceHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req dto.InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.rebuildUC.Invalidate(r.Context(), req.AccountIDs); err != nil {
		writeError(w, mapDomainError(err), "invalidate failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
