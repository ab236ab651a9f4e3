package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/episteme/server/internal/api/pagination"
	"github.com/episteme/server/internal/api/problem"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventResponse struct {
	ULID       string          `json:"id"`
	CaseULID   string          `json:"case_id"`
	Sequence   int64           `json:"sequence"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Actor      string          `json:"actor"`
	Passage    string          `json:"passage,omitempty"`
	RecordedAt string          `json:"recorded_at"`
}

func eventToResponse(event events.Event) eventResponse {
	return eventResponse{
		ULID:       event.ULID,
		CaseULID:   event.CaseULID,
		Sequence:   event.Sequence,
		Type:       event.Type,
		Payload:    event.Payload,
		Actor:      event.Actor,
		Passage:    event.Passage,
		RecordedAt: event.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}

type eventListResponse struct {
	Items      []eventResponse `json:"items"`
	NextCursor string          `json:"next_cursor"`
}

// Append handles POST /api/v1/cases/{id}/events. Malformed JSON is an
// invalid payload before it ever reaches the domain layer; everything
// past decoding maps through the taxonomy.
func (h *EventsHandler) Append(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		metrics.AppendRejections.WithLabelValues(string(cases.KindInvalidEventPayload)).Inc()
		problem.WriteDomainError(w, r, cases.InvalidEventPayload("request body is not valid JSON", err), h.Env)
		return
	}

	result, err := h.Service.Append(r.Context(), r.PathValue("id"), input)
	if err != nil {
		if kind, ok := cases.KindOf(err); ok {
			metrics.AppendRejections.WithLabelValues(string(kind)).Inc()
		}
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}

	metrics.EventsAppended.WithLabelValues(result.Event.Type).Inc()
	writeJSON(w, http.StatusCreated, eventToResponse(result.Event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := events.Pagination{Limit: 100}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		seq, err := pagination.DecodeStreamCursor(cursor)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "https://episteme.app/problems/validation-error", "Invalid request", err, h.Env)
			return
		}
		page.AfterSequence = seq
	}

	result, err := h.Service.List(r.Context(), r.PathValue("id"), page)
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(result.Events))
	for _, event := range result.Events {
		items = append(items, eventToResponse(event))
	}
	writeJSON(w, http.StatusOK, eventListResponse{Items: items, NextCursor: result.NextCursor})
}
