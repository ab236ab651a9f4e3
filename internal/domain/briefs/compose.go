package briefs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/episteme/server/internal/domain/events"
)

// sectionOrder fixes the brief layout regardless of append order.
var sectionOrder = []string{
	"finding_recorded",
	"hypothesis_raised",
	"source_attached",
	"note_added",
	"status_annotated",
}

var sectionTitles = map[string]string{
	"finding_recorded":  "Findings",
	"hypothesis_raised": "Open hypotheses",
	"source_attached":   "Sources",
	"note_added":        "Notes",
	"status_annotated":  "Status annotations",
}

// Compose folds a case's event stream into a grounded brief. Every line
// cites the event it came from; statements without a backing event do
// not exist in a brief.
func Compose(caseULID string, stream []events.Event) Brief {
	brief := Brief{
		CaseULID:     caseULID,
		RecomputedAt: time.Now().UTC(),
	}

	bySection := make(map[string][]events.Event)
	for _, event := range stream {
		bySection[event.Type] = append(bySection[event.Type], event)
		if event.Sequence > brief.UpToSequence {
			brief.UpToSequence = event.Sequence
		}
	}

	var body strings.Builder
	for _, section := range sectionOrder {
		entries := bySection[section]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&body, "## %s\n\n", sectionTitles[section])
		for _, event := range entries {
			fmt.Fprintf(&body, "- %s [^%d]\n", summarize(event), event.Sequence)
			brief.Citations = append(brief.Citations, Citation{
				EventULID: event.ULID,
				Sequence:  event.Sequence,
			})
		}
		body.WriteString("\n")
	}

	brief.Body = strings.TrimSpace(body.String())
	return brief
}

// summarize extracts a one-line statement from an event payload. Known
// keys are preferred; otherwise the actor and type stand in.
func summarize(event events.Event) string {
	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err == nil {
		for _, key := range []string{"text", "statement", "title", "url"} {
			if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return fmt.Sprintf("%s by %s", strings.ReplaceAll(event.Type, "_", " "), event.Actor)
}
