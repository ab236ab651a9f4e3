package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/episteme/server/internal/domain/search"
	"github.com/episteme/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

var _ storage.PassageRepository = (*PassageRepository)(nil)

// SourceForEvent returns the passage text attached to an event, or
// storage.ErrNoPassage when the event carries none.
func (r *PassageRepository) SourceForEvent(ctx context.Context, eventULID string) (storage.PassageSource, error) {
	queryer := r.queryer()

	const query = `
		SELECT e.ulid, c.ulid, e.passage
		FROM case_events e
		JOIN cases c ON c.id = e.case_id
		WHERE e.ulid = $1 AND e.passage IS NOT NULL AND e.passage <> ''`

	var source storage.PassageSource
	err := queryer.QueryRow(ctx, query, strings.ToUpper(eventULID)).
		Scan(&source.EventULID, &source.CaseULID, &source.Text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.PassageSource{}, storage.ErrNoPassage
		}
		return storage.PassageSource{}, fmt.Errorf("get passage source: %w", err)
	}
	return source, nil
}

func (r *PassageRepository) StoreVector(ctx context.Context, eventULID string, vector []float32) error {
	queryer := r.queryer()

	const query = `
		INSERT INTO passages (event_id, case_id, body, embedding)
		SELECT e.id, e.case_id, e.passage, $2
		FROM case_events e
		WHERE e.ulid = $1 AND e.passage IS NOT NULL AND e.passage <> ''
		ON CONFLICT (event_id) DO UPDATE SET embedding = EXCLUDED.embedding`

	tag, err := queryer.Exec(ctx, query, strings.ToUpper(eventULID), pgvector.NewVector(vector))
	if err != nil {
		return fmt.Errorf("store passage vector: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNoPassage
	}
	return nil
}

// Nearest ranks passages by cosine similarity to the query vector.
func (r *PassageRepository) Nearest(ctx context.Context, vector []float32, limit int) ([]search.Hit, error) {
	queryer := r.queryer()

	const query = `
		SELECT c.ulid, e.ulid, p.body, 1 - (p.embedding <=> $1) AS score
		FROM passages p
		JOIN case_events e ON e.id = p.event_id
		JOIN cases c ON c.id = p.case_id
		WHERE c.status <> 'archived'
		ORDER BY p.embedding <=> $1
		LIMIT $2`

	rows, err := queryer.Query(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("nearest passages: %w", err)
	}
	defer rows.Close()

	hits := make([]search.Hit, 0, limit)
	for rows.Next() {
		var hit search.Hit
		if err := rows.Scan(&hit.CaseULID, &hit.EventULID, &hit.Passage, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan passage hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearest passages: %w", err)
	}
	return hits, nil
}
