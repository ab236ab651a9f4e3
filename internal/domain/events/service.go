package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// Enqueuer schedules the background work an append triggers: brief
// recomputation always, passage embedding when the event carries one.
type Enqueuer interface {
	EnqueueBriefRecompute(ctx context.Context, caseULID string) error
	EnqueuePassageEmbed(ctx context.Context, eventULID string) error
}

// Publisher fans a committed event out to live subscribers (SSE streams).
type Publisher interface {
	Publish(event Event)
}

// BriefMarker flags a case's brief as stale. Satisfied by the briefs
// repository; kept local so the stream does not depend on the briefs
// package.
type BriefMarker interface {
	MarkStale(ctx context.Context, caseULID string) error
}

type Service struct {
	repo      Repository
	enqueuer  Enqueuer
	publisher Publisher
	briefs    BriefMarker
}

func NewService(repo Repository, enqueuer Enqueuer, publisher Publisher, briefs BriefMarker) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, publisher: publisher, briefs: briefs}
}

// Append validates input and appends it to the case stream. Validation
// strictly precedes the store write: a payload that fails validation can
// never surface an append error, and vice versa.
func (s *Service) Append(ctx context.Context, caseULID string, input EventInput) (*AppendResult, error) {
	caseULID = ids.Normalize(caseULID)
	if err := ids.ValidateULID(caseULID); err != nil {
		return nil, cases.CaseNotFound(caseULID)
	}

	if err := ValidateInput(input); err != nil {
		return nil, cases.InvalidEventPayload(err.Error(), err)
	}

	event, err := s.repo.Append(ctx, caseULID, input)
	if err != nil {
		if errors.Is(err, cases.ErrNoCase) {
			return nil, cases.CaseNotFound(caseULID)
		}
		return nil, cases.EventAppendError(err)
	}

	s.afterAppend(ctx, event)
	return &AppendResult{Event: event}, nil
}

// afterAppend schedules follow-up work. The append is already durable;
// enqueue failures are logged and left to the periodic reconciler.
func (s *Service) afterAppend(ctx context.Context, event Event) {
	logger := zerolog.Ctx(ctx)

	// The brief reads stale from the moment of the append until the
	// recompute lands.
	if s.briefs != nil {
		if err := s.briefs.MarkStale(ctx, event.CaseULID); err != nil {
			logger.Error().Err(err).Str("case_ulid", event.CaseULID).Msg("mark brief stale failed")
		}
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueBriefRecompute(ctx, event.CaseULID); err != nil {
			logger.Error().Err(err).Str("case_ulid", event.CaseULID).Msg("enqueue brief recompute failed")
		}
		if event.Passage != "" {
			if err := s.enqueuer.EnqueuePassageEmbed(ctx, event.ULID); err != nil {
				logger.Error().Err(err).Str("event_ulid", event.ULID).Msg("enqueue passage embed failed")
			}
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}

// List returns one page of a case's stream ordered by sequence.
func (s *Service) List(ctx context.Context, caseULID string, pagination Pagination) (ListResult, error) {
	caseULID = ids.Normalize(caseULID)
	if err := ids.ValidateULID(caseULID); err != nil {
		return ListResult{}, cases.CaseNotFound(caseULID)
	}
	if pagination.Limit <= 0 {
		pagination.Limit = 100
	}
	if pagination.Limit > 500 {
		pagination.Limit = 500
	}

	result, err := s.repo.List(ctx, caseULID, pagination)
	if err != nil {
		if errors.Is(err, cases.ErrNoCase) {
			return ListResult{}, cases.CaseNotFound(caseULID)
		}
		return ListResult{}, fmt.Errorf("list events: %w", err)
	}
	return result, nil
}
