package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/episteme/server/internal/api/problem"
	"github.com/episteme/server/internal/domain/search"
	"github.com/episteme/server/internal/metrics"
)

type SearchHandler struct {
	Service *search.Service
	Env     string
}

func NewSearchHandler(service *search.Service, env string) *SearchHandler {
	return &SearchHandler{Service: service, Env: env}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", errors.New("limit must be a positive integer"), h.Env)
			return
		}
		limit = parsed
	}

	metrics.SearchQueries.Inc()
	result, err := h.Service.Search(r.Context(), query, limit)
	if err != nil {
		var queryErr search.QueryError
		if errors.As(err, &queryErr) {
			problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, "https://episteme.app/problems/server-error", "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
