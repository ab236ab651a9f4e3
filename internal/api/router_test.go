package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMethodMux(t *testing.T) {
	getHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("GET response"))
	})

	postHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("POST response"))
	})

	mux := methodMux(map[string]http.Handler{
		http.MethodGet:  getHandler,
		http.MethodPost: postHandler,
	})

	tests := []struct {
		name         string
		method       string
		expectStatus int
		expectBody   string
		expectAllow  string
	}{
		{
			name:         "GET allowed",
			method:       http.MethodGet,
			expectStatus: http.StatusOK,
			expectBody:   "GET response",
		},
		{
			name:         "POST allowed",
			method:       http.MethodPost,
			expectStatus: http.StatusCreated,
			expectBody:   "POST response",
		},
		{
			name:         "PUT not allowed",
			method:       http.MethodPut,
			expectStatus: http.StatusMethodNotAllowed,
			expectAllow:  "GET, POST",
		},
		{
			name:         "DELETE not allowed",
			method:       http.MethodDelete,
			expectStatus: http.StatusMethodNotAllowed,
			expectAllow:  "GET, POST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/cases", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.expectStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.expectStatus)
			}
			if tt.expectBody != "" && !strings.Contains(rec.Body.String(), tt.expectBody) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.expectBody)
			}
			if tt.expectAllow != "" && rec.Header().Get("Allow") != tt.expectAllow {
				t.Errorf("Allow = %q, want %q", rec.Header().Get("Allow"), tt.expectAllow)
			}
		})
	}
}

func TestAllowedMethodsSorted(t *testing.T) {
	got := allowedMethods(map[string]http.Handler{
		http.MethodPost: http.NotFoundHandler(),
		http.MethodGet:  http.NotFoundHandler(),
		http.MethodPut:  http.NotFoundHandler(),
	})
	if got != "GET, POST, PUT" {
		t.Errorf("allowedMethods = %q, want %q", got, "GET, POST, PUT")
	}
}
