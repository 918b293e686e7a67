package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFound("Rate plan"),
			expected: "NOT_FOUND: Rate plan not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("database connection failed")),
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the original error")
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"concurrency", ConcurrencyConflict("busy", nil), CodeConcurrencyConflict, http.StatusConflict},
		{"capacity", CapacityExceeded("full", nil), CodeCapacityExceeded, http.StatusConflict},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestStatusCode_DefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "SOMETHING"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500 for zero status, got %d", err.StatusCode())
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	inner := CapacityExceeded("no rooms", map[string]any{"nights": []string{"2025-12-10"}})
	wrapped := fmt.Errorf("confirm: %w", inner)

	got := AsAppError(wrapped)
	if got != inner {
		t.Fatalf("expected the wrapped AppError to be returned")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError should see through wrapping")
	}
	if !HasCode(wrapped, CodeCapacityExceeded) {
		t.Errorf("HasCode should match CAPACITY_EXCEEDED")
	}
}

func TestAsAppError_PlainError(t *testing.T) {
	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Errorf("internal error should wrap the original")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ConcurrencyConflict("busy", nil)) {
		t.Errorf("concurrency conflicts must be retryable")
	}
	if IsRetryable(CapacityExceeded("full", nil)) {
		t.Errorf("capacity errors must not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Errorf("plain errors are not retryable")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	appErr := ConcurrencyConflict("Rate plan ledger is busy", nil).
		WithDetails(map[string]any{"rate_plan_id": "p1"})

	var resp ErrorResponse
	if err := json.Unmarshal(appErr.ToJSON(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Code != CodeConcurrencyConflict {
		t.Errorf("code = %s", resp.Code)
	}
	if !resp.Retryable {
		t.Errorf("retryable flag lost in JSON")
	}
	if resp.Details["rate_plan_id"] != "p1" {
		t.Errorf("details lost in JSON: %v", resp.Details)
	}
}
