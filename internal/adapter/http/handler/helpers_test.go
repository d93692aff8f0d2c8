package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/axiompay/internal/adapter/http/dto"
	"github.com/iho/axiompay/internal/domain"
)

func TestStatusForCategory(t *testing.T) {
	tests := []struct {
		category domain.Category
		expected int
	}{
		{domain.CategoryInvalidRequest, http.StatusBadRequest},
		{domain.CategoryLedgerRejected, http.StatusUnprocessableEntity},
		{domain.CategoryTransientNetworkFailure, http.StatusServiceUnavailable},
		{domain.CategoryConfiguration, http.StatusServiceUnavailable},
		{domain.CategoryInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := statusForCategory(tt.category); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteFailure_InternalIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", nil)

	writeFailure(rec, req, zerolog.Nop(), errors.New("dial tcp 35.1.2.3:50211: operator key 302e... rejected"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != dto.StatusError || resp.Category != "internal_error" || resp.Message != "Internal server error" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "Endpoint not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}
}
