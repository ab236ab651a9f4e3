package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/episteme/server/internal/domain/briefs"
	"github.com/episteme/server/internal/domain/search"
	"github.com/episteme/server/internal/metrics"
	"github.com/episteme/server/internal/storage"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

type RecomputeBriefArgs struct {
	CaseULID string `json:"case_ulid"`
}

func (RecomputeBriefArgs) Kind() string { return JobKindRecomputeBrief }

type EmbedPassageArgs struct {
	EventULID string `json:"event_ulid"`
}

func (EmbedPassageArgs) Kind() string { return JobKindEmbedPassage }

type PruneStaleBriefsArgs struct{}

func (PruneStaleBriefsArgs) Kind() string { return JobKindPruneStaleBriefs }

// RecomputeBriefWorker folds a case's full event stream into a fresh brief.
type RecomputeBriefWorker struct {
	river.WorkerDefaults[RecomputeBriefArgs]
	Briefs *briefs.Service
	Logger zerolog.Logger
}

func (RecomputeBriefWorker) Kind() string { return JobKindRecomputeBrief }

func (w RecomputeBriefWorker) Work(ctx context.Context, job *river.Job[RecomputeBriefArgs]) error {
	if w.Briefs == nil {
		return fmt.Errorf("briefs service not configured")
	}
	if err := w.Briefs.Recompute(ctx, job.Args.CaseULID); err != nil {
		metrics.BriefRecomputes.WithLabelValues("error").Inc()
		return fmt.Errorf("recompute brief for case %s: %w", job.Args.CaseULID, err)
	}
	metrics.BriefRecomputes.WithLabelValues("success").Inc()
	w.Logger.Debug().Str("case_ulid", job.Args.CaseULID).Msg("brief recomputed")
	return nil
}

// EmbedPassageWorker sends an event's passage to the embedding service and
// stores the resulting vector for semantic search.
type EmbedPassageWorker struct {
	river.WorkerDefaults[EmbedPassageArgs]
	Passages storage.PassageRepository
	Embedder search.Embedder
	Logger   zerolog.Logger
}

func (EmbedPassageWorker) Kind() string { return JobKindEmbedPassage }

func (w EmbedPassageWorker) Work(ctx context.Context, job *river.Job[EmbedPassageArgs]) error {
	if w.Passages == nil || w.Embedder == nil {
		return fmt.Errorf("embed passage worker not configured")
	}

	source, err := w.Passages.SourceForEvent(ctx, job.Args.EventULID)
	if err != nil {
		if errors.Is(err, storage.ErrNoPassage) {
			// Nothing to embed; the event carried no passage.
			return river.JobCancel(err)
		}
		return fmt.Errorf("load passage for event %s: %w", job.Args.EventULID, err)
	}

	vector, err := w.Embedder.Embed(ctx, source.Text)
	if err != nil {
		return fmt.Errorf("embed passage for event %s: %w", job.Args.EventULID, err)
	}

	if err := w.Passages.StoreVector(ctx, source.EventULID, vector); err != nil {
		return fmt.Errorf("store vector for event %s: %w", job.Args.EventULID, err)
	}

	w.Logger.Debug().
		Str("event_ulid", source.EventULID).
		Str("case_ulid", source.CaseULID).
		Msg("passage embedded")
	return nil
}

// PruneStaleBriefsWorker drops briefs whose case has been archived, so
// archived cases stop carrying derived state.
type PruneStaleBriefsWorker struct {
	river.WorkerDefaults[PruneStaleBriefsArgs]
	Briefs briefs.Repository
	Logger zerolog.Logger
}

func (PruneStaleBriefsWorker) Kind() string { return JobKindPruneStaleBriefs }

func (w PruneStaleBriefsWorker) Work(ctx context.Context, job *river.Job[PruneStaleBriefsArgs]) error {
	if w.Briefs == nil {
		return fmt.Errorf("briefs repository not configured")
	}
	pruned, err := w.Briefs.PruneOrphans(ctx)
	if err != nil {
		return fmt.Errorf("prune briefs: %w", err)
	}
	if pruned > 0 {
		w.Logger.Info().Int64("pruned", pruned).Msg("archived case briefs pruned")
	}
	return nil
}
