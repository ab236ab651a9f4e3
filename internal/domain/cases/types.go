package cases

import "time"

// CaseStatus tracks the lifecycle of a research case.
type CaseStatus string

const (
	StatusOpen     CaseStatus = "open"
	StatusClosed   CaseStatus = "closed"
	StatusArchived CaseStatus = "archived"
)

// ValidStatus reports whether value is a known lifecycle state.
func ValidStatus(value CaseStatus) bool {
	switch value {
	case StatusOpen, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// Case is a research aggregate: the root every event stream, brief, and
// passage hangs off.
type Case struct {
	ID        string
	ULID      string
	URI       string
	Title     string
	Summary   string
	Status    CaseStatus
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CaseInput carries the caller-supplied fields for creating a case.
type CaseInput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Filters narrows a case listing.
type Filters struct {
	Status CaseStatus
	Query  string
}

// Pagination is keyset pagination over (created_at, ulid).
type Pagination struct {
	After string
	Limit int
}

// ListResult is one page of cases plus the cursor for the next page.
type ListResult struct {
	Cases      []Case
	NextCursor string
}
