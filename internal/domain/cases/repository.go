package cases

import (
	"context"
	"errors"
)

// ErrNoCase is the storage-level sentinel for a missing case row. Services
// translate it into the boundary taxonomy (KindCaseNotFound).
var ErrNoCase = errors.New("case not found")

// Repository is the persistence contract for case aggregates.
type Repository interface {
	Create(ctx context.Context, record Case) (Case, error)
	GetByULID(ctx context.Context, ulid string) (*Case, error)
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	UpdateStatus(ctx context.Context, ulid string, status CaseStatus) (*Case, error)
}
