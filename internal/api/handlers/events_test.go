package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCaseULID = "01J8ZQ6W8E3Y4V5T6R7S8D9FAB"

type stubEventRepo struct {
	appendErr   error
	appendCalls int
}

func (r *stubEventRepo) Append(ctx context.Context, caseULID string, input events.EventInput) (events.Event, error) {
	r.appendCalls++
	if r.appendErr != nil {
		return events.Event{}, r.appendErr
	}
	return events.Event{
		ULID:       "01J8ZQ6W8E3Y4V5T6R7S8D9FAC",
		CaseULID:   caseULID,
		Sequence:   1,
		Type:       input.Type,
		Payload:    input.Payload,
		Actor:      input.Actor,
		RecordedAt: time.Now(),
	}, nil
}

func (r *stubEventRepo) List(ctx context.Context, caseULID string, pagination events.Pagination) (events.ListResult, error) {
	return events.ListResult{}, nil
}

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueBriefRecompute(ctx context.Context, caseULID string) error { return nil }
func (noopEnqueuer) EnqueuePassageEmbed(ctx context.Context, eventULID string) error  { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(event events.Event) {}

func appendRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+testCaseULID+"/events", strings.NewReader(body))
	req.SetPathValue("id", testCaseULID)
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAppendStatusMapping(t *testing.T) {
	validBody := `{"type":"note_added","payload":{"text":"checked the registry"},"actor":"analyst"}`

	tests := []struct {
		name       string
		body       string
		appendErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed JSON is an invalid payload",
			body:       `{"type":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_event_payload",
		},
		{
			name:       "unregistered type is an invalid payload",
			body:       `{"type":"mystery","payload":{"a":1},"actor":"analyst"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_event_payload",
		},
		{
			name:       "store failure is an append error",
			body:       validBody,
			appendErr:  errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "event_append_error",
		},
		{
			name:       "missing case",
			body:       validBody,
			appendErr:  cases.ErrNoCase,
			wantStatus: http.StatusNotFound,
			wantCode:   "case_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubEventRepo{appendErr: tt.appendErr}
			service := events.NewService(repo, noopEnqueuer{}, noopPublisher{}, nil)
			handler := NewEventsHandler(service, "test")

			rec := httptest.NewRecorder()
			handler.Append(rec, appendRequest(t, tt.body))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestAppendValidationNeverReachesStore(t *testing.T) {
	repo := &stubEventRepo{}
	service := events.NewService(repo, noopEnqueuer{}, noopPublisher{}, nil)
	handler := NewEventsHandler(service, "test")

	rec := httptest.NewRecorder()
	handler.Append(rec, appendRequest(t, `{"type":"note_added","payload":{},"actor":"analyst"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.appendCalls, "store must not be touched for invalid payloads")
}

func TestAppendSuccess(t *testing.T) {
	repo := &stubEventRepo{}
	service := events.NewService(repo, noopEnqueuer{}, noopPublisher{}, nil)
	handler := NewEventsHandler(service, "test")

	rec := httptest.NewRecorder()
	handler.Append(rec, appendRequest(t, `{"type":"note_added","payload":{"text":"x"},"actor":"analyst"}`))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testCaseULID, resp.CaseULID)
	assert.Equal(t, int64(1), resp.Sequence)
	assert.Equal(t, "note_added", resp.Type)
}
