package postgres

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saldopos/saldo/internal/infrastructure/logging"
)

func TestRetrierRetriesOnSerializationFailure(t *testing.T) {
	r := NewRetrier()
	r.maxRetries = 2
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 10 * time.Millisecond

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrSerializationFailure}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := NewRetrier()
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierLogsCarryRunID(t *testing.T) {
	ctx := logging.ContextWithRunID(context.Background(), "run-42")

	output := captureStdout(t, func() {
		// The slog handler binds os.Stdout at construction.
		r := NewRetrier().WithLogger(logging.New(slog.LevelWarn, "json"))
		r.maxRetries = 2
		r.initialInterval = 1 * time.Millisecond
		r.maxInterval = 2 * time.Millisecond
		r.maxElapsedTime = 10 * time.Millisecond

		attempts := 0
		err := r.Retry(ctx, func() error {
			attempts++
			if attempts < 2 {
				return &pgconn.PgError{Code: pgErrSerializationFailure}
			}
			return nil
		})
		if err != nil {
			t.Errorf("expected success after retry, got %v", err)
		}
	})

	if !strings.Contains(output, `"run_id":"run-42"`) {
		t.Fatalf("expected run id in retry log, got %q", output)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = pw
	defer func() {
		os.Stdout = oldStdout
	}()

	fn()

	_ = pw.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, pr); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}

	return buf.String()
}

func TestIsRetryableError(t *testing.T) {
	for _, code := range []string{pgErrDeadlock, pgErrSerializationFailure} {
		if !isRetryableError(&pgconn.PgError{Code: code}) {
			t.Fatalf("expected %s to be retryable", code)
		}
	}

	nonRetryable := errors.New("other")
	if isRetryableError(nonRetryable) {
		t.Fatalf("expected generic error to be non-retryable")
	}
}
