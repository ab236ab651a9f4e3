package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/episteme/server/internal/api/pagination"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/domain/ids"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `e.id, e.ulid, c.ulid, e.sequence, e.event_type, e.payload, e.actor, e.passage, e.recorded_at`

func scanEvent(row pgx.Row) (events.Event, error) {
	var e events.Event
	var passage pgtype.Text
	var recordedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.ULID, &e.CaseULID, &e.Sequence, &e.Type, &e.Payload, &e.Actor, &passage, &recordedAt)
	if err != nil {
		return events.Event{}, err
	}
	e.Passage = passage.String
	e.RecordedAt = recordedAt.Time
	return e, nil
}

// Append commits one event at the next sequence for the case. The case row
// is locked for the duration so concurrent appends cannot race on the
// sequence number.
func (r *EventRepository) Append(ctx context.Context, caseULID string, input events.EventInput) (events.Event, error) {
	if r.tx != nil {
		return appendInTx(ctx, r.tx, caseULID, input)
	}

	var appended events.Event
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		appended, err = appendInTx(ctx, tx, caseULID, input)
		return err
	})
	if err != nil {
		return events.Event{}, err
	}
	return appended, nil
}

func appendInTx(ctx context.Context, tx pgx.Tx, caseULID string, input events.EventInput) (events.Event, error) {
	const lockQuery = `SELECT id FROM cases WHERE ulid = $1 FOR UPDATE`

	var caseID string
	if err := tx.QueryRow(ctx, lockQuery, strings.ToUpper(caseULID)).Scan(&caseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, cases.ErrNoCase
		}
		return events.Event{}, fmt.Errorf("lock case: %w", err)
	}

	const insertQuery = `
		INSERT INTO case_events (ulid, case_id, sequence, event_type, payload, actor, passage)
		SELECT $1, $2, COALESCE(MAX(sequence), 0) + 1, $3, $4, $5, NULLIF($6, '')
		FROM case_events WHERE case_id = $2
		RETURNING id, ulid, sequence, event_type, payload, actor, passage, recorded_at`

	eventULID, err := ids.NewULID()
	if err != nil {
		return events.Event{}, fmt.Errorf("mint event ulid: %w", err)
	}

	var e events.Event
	var passage pgtype.Text
	var recordedAt pgtype.Timestamptz
	err = tx.QueryRow(ctx, insertQuery,
		eventULID, caseID, input.Type, input.Payload, input.Actor, input.Passage).
		Scan(&e.ID, &e.ULID, &e.Sequence, &e.Type, &e.Payload, &e.Actor, &passage, &recordedAt)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	e.CaseULID = strings.ToUpper(caseULID)
	e.Passage = passage.String
	e.RecordedAt = recordedAt.Time

	const touchQuery = `UPDATE cases SET updated_at = now() WHERE id = $1`
	if _, err := tx.Exec(ctx, touchQuery, caseID); err != nil {
		return events.Event{}, fmt.Errorf("touch case: %w", err)
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context, caseULID string, paginationArgs events.Pagination) (events.ListResult, error) {
	queryer := r.queryer()

	const existsQuery = `SELECT 1 FROM cases WHERE ulid = $1`
	var one int
	if err := queryer.QueryRow(ctx, existsQuery, strings.ToUpper(caseULID)).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.ListResult{}, cases.ErrNoCase
		}
		return events.ListResult{}, fmt.Errorf("check case: %w", err)
	}

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT ` + eventColumns + `
		FROM case_events e
		JOIN cases c ON c.id = e.case_id
		WHERE c.ulid = $1 AND e.sequence > $2
		ORDER BY e.sequence ASC
		LIMIT $3`

	rows, err := queryer.Query(ctx, query, strings.ToUpper(caseULID), paginationArgs.AfterSequence, limit+1)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0, limit)
	for rows.Next() {
		item, err := scanEvent(rows)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}

	result := events.ListResult{Events: items}
	if len(items) > limit {
		result.Events = items[:limit]
		result.NextCursor = pagination.EncodeStreamCursor(result.Events[limit-1].Sequence)
	}
	return result, nil
}
