package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/saldopos/saldo/internal/adapter/http/dto"
	"github.com/saldopos/saldo/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAnchorRegression):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRebuildInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingCounterparty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseAccountIDs parses the comma-separated account_ids query parameter.
// Absence means "all accounts" and is returned as nil.
func parseAccountIDs(r *http.Request) ([]int64, error) {
	raw := r.URL.Query().Get("account_ids")
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// parseAsOf parses the optional as_of query parameter as RFC 3339.
func parseAsOf(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// splitErrors flattens an errors.Join result into messages for responses.
func splitErrors(err error) []string {
	if err == nil {
		return nil
	}

	type unwrapper interface {
		Unwrap() []error
	}

	if joined, ok := err.(unwrapper); ok {
		errs := joined.Unwrap()
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return msgs
	}

	return []string{err.Error()}
}
