package handlers

import (
	"net/http"
	"time"

	"github.com/episteme/server/internal/api/problem"
	"github.com/episteme/server/internal/domain/briefs"
)

type BriefsHandler struct {
	Service *briefs.Service
	Env     string
}

func NewBriefsHandler(service *briefs.Service, env string) *BriefsHandler {
	return &BriefsHandler{Service: service, Env: env}
}

type briefResponse struct {
	CaseULID     string            `json:"case_id"`
	Body         string            `json:"body"`
	Citations    []briefs.Citation `json:"citations"`
	UpToSequence int64             `json:"up_to_sequence"`
	Stale        bool              `json:"stale"`
	RecomputedAt string            `json:"recomputed_at,omitempty"`
}

func (h *BriefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	brief, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}

	response := briefResponse{
		CaseULID:     brief.CaseULID,
		Body:         brief.Body,
		Citations:    brief.Citations,
		UpToSequence: brief.UpToSequence,
		Stale:        brief.Stale,
	}
	if !brief.RecomputedAt.IsZero() {
		response.RecomputedAt = brief.RecomputedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, response)
}
