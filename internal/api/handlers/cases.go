package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/episteme/server/internal/api/problem"
	"github.com/episteme/server/internal/domain/cases"
)

type CasesHandler struct {
	Service *cases.Service
	Env     string
}

func NewCasesHandler(service *cases.Service, env string) *CasesHandler {
	return &CasesHandler{Service: service, Env: env}
}

type caseResponse struct {
	ULID      string `json:"id"`
	URI       string `json:"uri"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func caseToResponse(record cases.Case) caseResponse {
	return caseResponse{
		ULID:      record.ULID,
		URI:       record.URI,
		Title:     record.Title,
		Summary:   record.Summary,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type caseListResponse struct {
	Items      []caseResponse `json:"items"`
	NextCursor string         `json:"next_cursor"`
}

func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input cases.CaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), input)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", err, h.Env)
		return
	}

	w.Header().Set("Location", created.URI)
	writeJSON(w, http.StatusCreated, caseToResponse(*created))
}

func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, pagination, err := cases.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "https://episteme.app/problems/server-error", "Server error", err, h.Env)
		return
	}

	items := make([]caseResponse, 0, len(result.Cases))
	for _, record := range result.Cases {
		items = append(items, caseToResponse(record))
	}
	writeJSON(w, http.StatusOK, caseListResponse{Items: items, NextCursor: result.NextCursor})
}

func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, caseToResponse(*record))
}

func (h *CasesHandler) Close(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Close(r.Context(), r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, caseToResponse(*record))
}

func (h *CasesHandler) Archive(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Archive(r.Context(), r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, caseToResponse(*record))
}
