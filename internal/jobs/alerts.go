package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// NotifyFunc receives job failures so an operator channel can be attached
// without the queue knowing about it.
type NotifyFunc func(ctx context.Context, job *rivertype.JobRow, err error)

// FailureHandler records failed and panicked jobs. Recomputes and embeds
// retry on their own backoff schedule; the handler only observes.
type FailureHandler struct {
	logger *slog.Logger
	notify NotifyFunc
}

func NewFailureHandler(logger *slog.Logger, notify NotifyFunc) *FailureHandler {
	return &FailureHandler{logger: logger, notify: notify}
}

func (h *FailureHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	if h.logger != nil {
		h.logger.Error("job failed",
			"kind", job.Kind, "job_id", job.ID,
			"attempt", job.Attempt, "max_attempts", job.MaxAttempts,
			"error", err)
	}
	if h.notify != nil {
		h.notify(ctx, job, err)
	}
	return nil
}

func (h *FailureHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	err := fmt.Errorf("job panic: %v", panicVal)
	if h.logger != nil {
		h.logger.Error("job panicked",
			"kind", job.Kind, "job_id", job.ID,
			"attempt", job.Attempt,
			"error", err, "stack", trace)
	}
	if h.notify != nil {
		h.notify(ctx, job, err)
	}
	return nil
}
