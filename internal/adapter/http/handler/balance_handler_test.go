package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saldopos/saldo/internal/adapter/http/dto"
	"github.com/saldopos/saldo/internal/domain"
	"github.com/saldopos/saldo/internal/usecase"
)

type balanceServiceStub struct {
	getFn  func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error)
	listFn func(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error)
}

func (s *balanceServiceStub) GetBalance(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
	return s.getFn(ctx, accountID, asOf)
}

func (s *balanceServiceStub) GetBalances(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
	return s.listFn(ctx, accountIDs, asOf)
}

type rebuildServiceStub struct {
	rebuildFn    func(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error)
	invalidateFn func(ctx context.Context, accountIDs []int64) error
}

func (s *rebuildServiceStub) Rebuild(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error) {
	return s.rebuildFn(ctx, accountIDs)
}

func (s *rebuildServiceStub) Invalidate(ctx context.Context, accountIDs []int64) error {
	return s.invalidateFn(ctx, accountIDs)
}

func getRequest(target, accountID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("accountID", accountID)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestBalanceHandler_Get_Success(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
			if accountID != 42 {
				t.Fatalf("expected account 42, got %d", accountID)
			}
			return domain.NewMoney(-300, "EUR", 2), nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, getRequest("/api/v1/balances/42", "42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.AccountID != 42 || resp.AmountMinor != -300 || resp.Currency != "EUR" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Get_InvalidID(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
			t.Fatal("GetBalance should not be called for invalid id")
			return domain.Money{}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, getRequest("/api/v1/balances/abc", "abc"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_Get_UnknownAccount(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
			return domain.Money{}, domain.ErrAccountNotFound
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, getRequest("/api/v1/balances/999", "999"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_Get_PassesAsOf(t *testing.T) {
	var captured *time.Time
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
			captured = asOf
			return domain.NewMoney(0, "EUR", 2), nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, getRequest("/api/v1/balances/1?as_of=2026-03-01T12:00:00Z", "1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || !captured.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected as_of to be forwarded, got %v", captured)
	}
}

func TestBalanceHandler_Get_RejectsMalformedAsOf(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, accountID int64, asOf *time.Time) (domain.Money, error) {
			t.Fatal("GetBalance should not be called")
			return domain.Money{}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, getRequest("/api/v1/balances/1?as_of=yesterday", "1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_Success(t *testing.T) {
	var captured []int64
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
			captured = accountIDs
			return map[int64]domain.Money{
				1: domain.NewMoney(-300, "EUR", 2),
				2: domain.NewMoney(300, "EUR", 2),
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances?account_ids=1,2", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(captured) != 2 || captured[0] != 1 || captured[1] != 2 {
		t.Fatalf("expected parsed ids [1 2], got %v", captured)
	}

	var resp dto.ListBalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Balances) != 2 || resp.Balances[0].AccountID != 1 {
		t.Fatalf("unexpected balances: %+v", resp.Balances)
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", resp.Errors)
	}
}

func TestBalanceHandler_List_AllAccountsWhenFilterAbsent(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
			if accountIDs != nil {
				t.Fatalf("expected nil filter, got %v", accountIDs)
			}
			return map[int64]domain.Money{}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_PartialFailure(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
			return map[int64]domain.Money{
				1: domain.NewMoney(100, "EUR", 2),
			}, domain.ErrCurrencyMismatch
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances?account_ids=1,2", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with partial results, got %d", rec.Code)
	}

	var resp dto.ListBalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Balances) != 1 || len(resp.Errors) != 1 {
		t.Fatalf("expected one balance and one error, got %+v", resp)
	}
}

func TestBalanceHandler_List_UnknownAccount(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, accountIDs []int64, asOf *time.Time) (map[int64]domain.Money, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances?account_ids=999", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_Rebuild_Success(t *testing.T) {
	var captured []int64
	handler := NewBalanceHandler(nil, &rebuildServiceStub{
		rebuildFn: func(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error) {
			captured = accountIDs
			return &usecase.RebuildResult{RunID: "run-1", Accounts: 2, Duration: 1500 * time.Millisecond}, nil
		},
	})

	body, _ := json.Marshal(dto.RebuildRequest{AccountIDs: []int64{1, 2}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/rebuild", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Rebuild(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(captured) != 2 {
		t.Fatalf("expected scoped rebuild, got %v", captured)
	}

	var resp dto.RebuildResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RunID != "run-1" || resp.Accounts != 2 || resp.DurationMS != 1500 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Rebuild_EmptyBodyMeansFullScope(t *testing.T) {
	handler := NewBalanceHandler(nil, &rebuildServiceStub{
		rebuildFn: func(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error) {
			if accountIDs != nil {
				t.Fatalf("expected nil scope, got %v", accountIDs)
			}
			return &usecase.RebuildResult{RunID: "run-2"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/rebuild", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	handler.Rebuild(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBalanceHandler_Rebuild_Conflict(t *testing.T) {
	handler := NewBalanceHandler(nil, &rebuildServiceStub{
		rebuildFn: func(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error) {
			return nil, domain.ErrRebuildInProgress
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/rebuild", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	handler.Rebuild(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestBalanceHandler_Rebuild_PartialFailureStillReportsRun(t *testing.T) {
	handler := NewBalanceHandler(nil, &rebuildServiceStub{
		rebuildFn: func(ctx context.Context, accountIDs []int64) (*usecase.RebuildResult, error) {
			return &usecase.RebuildResult{RunID: "run-3", Accounts: 1},
				errors.Join(domain.ErrCurrencyMismatch)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/balances/rebuild", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	handler.Rebuild(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.RebuildResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RunID != "run-3" || len(resp.Errors) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_InvalidateCache(t *testing.T) {
	var captured []int64
	handler := NewBalanceHandler(nil, &rebuildServiceStub{
		invalidateFn: func(ctx context.Context, accountIDs []int64) error {
			captured = accountIDs
			return nil
		},
	})

	body, _ := json.Marshal(dto.InvalidateRequest{AccountIDs: []int64{7}})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/balances/cache", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.InvalidateCache(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(captured) != 1 || captured[0] != 7 {
		t.Fatalf("expected account 7, got %v", captured)
	}
}
