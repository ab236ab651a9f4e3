package briefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// Repository persists derived briefs. Upsert replaces the whole brief;
// briefs are derived state and never merged.
type Repository interface {
	GetByCaseULID(ctx context.Context, caseULID string) (*Brief, error)
	Upsert(ctx context.Context, brief Brief) error
	MarkStale(ctx context.Context, caseULID string) error
	PruneOrphans(ctx context.Context) (int64, error)
}

// ErrNoBrief is the storage-level sentinel for a case without a
// computed brief yet.
var ErrNoBrief = errors.New("brief not found")

type Service struct {
	repo   Repository
	stream events.Repository
	logger zerolog.Logger
}

func NewService(repo Repository, stream events.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, stream: stream, logger: logger}
}

// Get returns the case's brief. A case whose recompute has not landed
// yet gets an empty, stale brief rather than a 404; only a missing case
// is an error.
func (s *Service) Get(ctx context.Context, caseULID string) (*Brief, error) {
	caseULID = ids.Normalize(caseULID)
	if err := ids.ValidateULID(caseULID); err != nil {
		return nil, cases.CaseNotFound(caseULID)
	}

	brief, err := s.repo.GetByCaseULID(ctx, caseULID)
	if err != nil {
		if errors.Is(err, ErrNoBrief) {
			return &Brief{CaseULID: caseULID, Stale: true}, nil
		}
		if errors.Is(err, cases.ErrNoCase) {
			return nil, cases.CaseNotFound(caseULID)
		}
		return nil, fmt.Errorf("get brief: %w", err)
	}
	return brief, nil
}

// Recompute rebuilds the brief from the full event stream. Called from
// the background worker, never inline with an append.
func (s *Service) Recompute(ctx context.Context, caseULID string) error {
	caseULID = ids.Normalize(caseULID)

	stream, err := s.collectStream(ctx, caseULID)
	if err != nil {
		return err
	}

	brief := Compose(caseULID, stream)
	if err := s.repo.Upsert(ctx, brief); err != nil {
		return fmt.Errorf("upsert brief: %w", err)
	}

	s.logger.Info().
		Str("case_ulid", caseULID).
		Int64("up_to_sequence", brief.UpToSequence).
		Int("citations", len(brief.Citations)).
		Msg("brief recomputed")
	return nil
}

func (s *Service) collectStream(ctx context.Context, caseULID string) ([]events.Event, error) {
	var stream []events.Event
	pagination := events.Pagination{Limit: 500}
	for {
		page, err := s.stream.List(ctx, caseULID, pagination)
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		stream = append(stream, page.Events...)
		if len(page.Events) < pagination.Limit {
			return stream, nil
		}
		pagination.AfterSequence = page.Events[len(page.Events)-1].Sequence
	}
}
