package jobs

import (
	"context"
	"fmt"

	"github.com/episteme/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

var _ events.Enqueuer = (*Enqueuer)(nil)

// Enqueuer schedules follow-up work after an event append commits.
type Enqueuer struct {
	client *river.Client[pgx.Tx]
}

func NewEnqueuer(client *river.Client[pgx.Tx]) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueBriefRecompute(ctx context.Context, caseULID string) error {
	opts := InsertOptsForKind(JobKindRecomputeBrief)
	if _, err := e.client.Insert(ctx, RecomputeBriefArgs{CaseULID: caseULID}, &opts); err != nil {
		return fmt.Errorf("enqueue brief recompute: %w", err)
	}
	return nil
}

func (e *Enqueuer) EnqueuePassageEmbed(ctx context.Context, eventULID string) error {
	opts := InsertOptsForKind(JobKindEmbedPassage)
	if _, err := e.client.Insert(ctx, EmbedPassageArgs{EventULID: eventULID}, &opts); err != nil {
		return fmt.Errorf("enqueue passage embed: %w", err)
	}
	return nil
}
