package events

import (
	"encoding/json"
	"time"
)

// Event is one immutable entry in a case's append-only stream.
type Event struct {
	ID         string
	ULID       string
	CaseULID   string
	Sequence   int64
	Type       string
	Payload    json.RawMessage
	Actor      string
	Passage    string
	RecordedAt time.Time
}

// EventInput carries a caller-submitted event before validation.
// Passage is optional free text; when present it is embedded for
// semantic search after the append commits.
type EventInput struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	Actor   string          `json:"actor" validate:"required,max=200"`
	Passage string          `json:"passage,omitempty" validate:"max=10000"`
}

// AppendResult reports a committed append.
type AppendResult struct {
	Event Event
}

// Pagination is sequence-keyed pagination over one case's stream.
type Pagination struct {
	AfterSequence int64
	Limit         int
}

// ListResult is one page of a case's stream.
type ListResult struct {
	Events     []Event
	NextCursor string
}
