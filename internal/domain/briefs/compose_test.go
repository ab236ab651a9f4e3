package briefs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/episteme/server/internal/domain/events"
)

const testCaseULID = "01J8ZQ6W8E3Y4V5T6R7S8D9FAB"

func event(seq int64, eventType, text string) events.Event {
	payload, _ := json.Marshal(map[string]string{"text": text})
	return events.Event{
		ULID:     "01J8ZQ6W8E3Y4V5T6R7S8D9FA" + string(rune('A'+seq)),
		CaseULID: testCaseULID,
		Sequence: seq,
		Type:     eventType,
		Payload:  payload,
		Actor:    "researcher-7",
	}
}

func TestComposeOrdersSectionsAndCites(t *testing.T) {
	stream := []events.Event{
		event(1, "note_added", "first archive visit inconclusive"),
		event(2, "finding_recorded", "ledger page 44 confirms shipment"),
		event(3, "hypothesis_raised", "the shipment was rerouted via Lyon"),
	}

	brief := Compose(testCaseULID, stream)

	if brief.UpToSequence != 3 {
		t.Fatalf("expected up_to_sequence 3, got %d", brief.UpToSequence)
	}
	if len(brief.Citations) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(brief.Citations))
	}

	findings := strings.Index(brief.Body, "## Findings")
	hypotheses := strings.Index(brief.Body, "## Open hypotheses")
	notes := strings.Index(brief.Body, "## Notes")
	if findings == -1 || hypotheses == -1 || notes == -1 {
		t.Fatalf("missing sections in body:\n%s", brief.Body)
	}
	if !(findings < hypotheses && hypotheses < notes) {
		t.Fatalf("sections out of order:\n%s", brief.Body)
	}
	if !strings.Contains(brief.Body, "ledger page 44 confirms shipment [^2]") {
		t.Fatalf("finding not cited:\n%s", brief.Body)
	}
}

func TestComposeEmptyStream(t *testing.T) {
	brief := Compose(testCaseULID, nil)
	if brief.Body != "" || brief.UpToSequence != 0 || len(brief.Citations) != 0 {
		t.Fatalf("expected empty brief, got %#v", brief)
	}
}

func TestSummarizeFallsBackToActor(t *testing.T) {
	entry := events.Event{
		Sequence: 1,
		Type:     "status_annotated",
		Payload:  json.RawMessage(`{"weight":3}`),
		Actor:    "curator-2",
	}
	brief := Compose(testCaseULID, []events.Event{entry})
	if !strings.Contains(brief.Body, "status annotated by curator-2") {
		t.Fatalf("expected actor fallback summary:\n%s", brief.Body)
	}
}
