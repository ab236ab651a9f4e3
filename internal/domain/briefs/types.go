package briefs

import "time"

// Citation links a brief statement back to the stream entry that
// grounds it.
type Citation struct {
	EventULID string `json:"event_ulid"`
	Sequence  int64  `json:"sequence"`
}

// Brief is the derived, grounded summary of one case. It is recomputed
// asynchronously whenever the case stream grows; Stale marks the window
// between an append and the recompute landing.
type Brief struct {
	CaseULID     string
	Body         string
	Citations    []Citation
	UpToSequence int64
	Stale        bool
	RecomputedAt time.Time
}
