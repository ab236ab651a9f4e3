package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/episteme/server/internal/domain/cases"
)

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/cases", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "bad request", errors.New("boom"), "development")

	if got := res.Result().Header.Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected content type problem+json, got %s", got)
	}

	var body ProblemDetails
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Detail != "boom" {
		t.Fatalf("expected detail boom, got %s", body.Detail)
	}
	if body.Instance != "/api/v1/cases" {
		t.Fatalf("expected instance /api/v1/cases, got %s", body.Instance)
	}
}

func TestWrite_ProdSanitizesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/cases", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "bad request", errors.New("boom"), "production")

	var body ProblemDetails
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Detail != http.StatusText(http.StatusBadRequest) {
		t.Fatalf("expected sanitized detail, got %s", body.Detail)
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{cases.InvalidEventPayload("payload: must be a JSON object", nil), http.StatusBadRequest, "invalid_event_payload"},
		{cases.EventAppendError(errors.New("connection reset")), http.StatusInternalServerError, "event_append_error"},
		{cases.CaseNotFound("01J8ZQ6W8E3Y4V5T6R7S8D9FAB"), http.StatusNotFound, "case_not_found"},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/cases/x/events", nil)
		res := httptest.NewRecorder()

		WriteDomainError(res, req, tc.err, "test")

		if res.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, res.Code)
		}
		var body ProblemDetails
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, body.Code)
		}
	}
}

func TestWriteDomainErrorFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/cases", nil)
	res := httptest.NewRecorder()

	WriteDomainError(res, req, errors.New("untyped failure"), "test")

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", res.Code)
	}
}
