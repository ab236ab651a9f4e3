package events

import "context"

// Repository is the persistence contract for the append-only stream.
// Append assigns the per-case sequence transactionally: two concurrent
// appends to the same case never observe the same sequence.
type Repository interface {
	Append(ctx context.Context, caseULID string, input EventInput) (Event, error)
	List(ctx context.Context, caseULID string, pagination Pagination) (ListResult, error)
}
