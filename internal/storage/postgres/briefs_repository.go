package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/episteme/server/internal/domain/briefs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ briefs.Repository = (*BriefRepository)(nil)

func (r *BriefRepository) GetByCaseULID(ctx context.Context, caseULID string) (*briefs.Brief, error) {
	queryer := r.queryer()

	const query = `
		SELECT c.ulid, b.body, b.citations, b.up_to_sequence, b.stale, b.recomputed_at
		FROM briefs b
		JOIN cases c ON c.id = b.case_id
		WHERE c.ulid = $1`

	var brief briefs.Brief
	var citations []byte
	var recomputedAt pgtype.Timestamptz
	err := queryer.QueryRow(ctx, query, strings.ToUpper(caseULID)).
		Scan(&brief.CaseULID, &brief.Body, &citations, &brief.UpToSequence, &brief.Stale, &recomputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, briefs.ErrNoBrief
		}
		return nil, fmt.Errorf("get brief: %w", err)
	}
	if len(citations) > 0 {
		if err := json.Unmarshal(citations, &brief.Citations); err != nil {
			return nil, fmt.Errorf("decode brief citations: %w", err)
		}
	}
	brief.RecomputedAt = recomputedAt.Time
	return &brief, nil
}

func (r *BriefRepository) Upsert(ctx context.Context, brief briefs.Brief) error {
	queryer := r.queryer()

	citations, err := json.Marshal(brief.Citations)
	if err != nil {
		return fmt.Errorf("encode brief citations: %w", err)
	}

	const query = `
		INSERT INTO briefs (case_id, body, citations, up_to_sequence, stale, recomputed_at)
		SELECT id, $2, $3, $4, $5, now() FROM cases WHERE ulid = $1
		ON CONFLICT (case_id) DO UPDATE SET
			body = EXCLUDED.body,
			citations = EXCLUDED.citations,
			up_to_sequence = EXCLUDED.up_to_sequence,
			stale = EXCLUDED.stale,
			recomputed_at = EXCLUDED.recomputed_at`

	tag, err := queryer.Exec(ctx, query,
		strings.ToUpper(brief.CaseULID), brief.Body, citations, brief.UpToSequence, brief.Stale)
	if err != nil {
		return fmt.Errorf("upsert brief: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return briefs.ErrNoBrief
	}
	return nil
}

func (r *BriefRepository) MarkStale(ctx context.Context, caseULID string) error {
	queryer := r.queryer()

	const query = `
		UPDATE briefs SET stale = true
		WHERE case_id = (SELECT id FROM cases WHERE ulid = $1)`

	if _, err := queryer.Exec(ctx, query, strings.ToUpper(caseULID)); err != nil {
		return fmt.Errorf("mark brief stale: %w", err)
	}
	return nil
}

// PruneOrphans removes briefs whose case has been archived. The periodic
// job calls this so archived cases stop carrying derived state.
func (r *BriefRepository) PruneOrphans(ctx context.Context) (int64, error) {
	queryer := r.queryer()

	const query = `
		DELETE FROM briefs
		WHERE case_id IN (SELECT id FROM cases WHERE status = 'archived')`

	tag, err := queryer.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prune briefs: %w", err)
	}
	return tag.RowsAffected(), nil
}
