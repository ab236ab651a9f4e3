package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/episteme/server/internal/api/problem"
	"github.com/episteme/server/internal/auth"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/metrics"
	"github.com/rs/zerolog"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 25 * time.Second

// StreamHandler serves the live event feed for one case as SSE. It sits
// outside the bearer-auth middleware and authenticates through the gate
// itself: a 401 here carries no body, so unauthenticated probes learn
// nothing about why they were refused.
type StreamHandler struct {
	Gate  *auth.Gate
	Cases *cases.Service
	Hub   *events.Hub
	Env   string
}

func NewStreamHandler(gate *auth.Gate, caseService *cases.Service, hub *events.Hub, env string) *StreamHandler {
	return &StreamHandler{Gate: gate, Cases: caseService, Hub: hub, Env: env}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	principal := h.Gate.Resolve(r.Context(), r.Header.Get("Authorization"))
	if principal == nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="episteme"`)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	record, err := h.Cases.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		problem.WriteDomainError(w, r, err, h.Env)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		problem.Write(w, r, http.StatusInternalServerError, "https://episteme.app/problems/server-error", "Server error", fmt.Errorf("response writer does not support streaming"), h.Env)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	subscription, cancel := h.Hub.Subscribe(record.ULID)
	defer cancel()

	metrics.StreamSubscribers.Inc()
	defer metrics.StreamSubscribers.Dec()

	logger := zerolog.Ctx(r.Context())
	logger.Info().
		Str("case_ulid", record.ULID).
		Str("principal", principal.ID).
		Msg("stream opened")

	fmt.Fprintf(w, "event: ready\ndata: {\"case_id\":%q}\n\n", record.ULID)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Info().Str("case_ulid", record.ULID).Msg("stream closed")
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, open := <-subscription:
			if !open {
				return
			}
			payload, err := json.Marshal(eventToResponse(event))
			if err != nil {
				logger.Error().Err(err).Msg("encode stream event")
				continue
			}
			fmt.Fprintf(w, "event: append\nid: %d\ndata: %s\n\n", event.Sequence, payload)
			flusher.Flush()
		}
	}
}
