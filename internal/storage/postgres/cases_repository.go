package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/episteme/server/internal/api/pagination"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ cases.Repository = (*CaseRepository)(nil)

const caseColumns = `id, ulid, uri, title, summary, status, owner_id, created_at, updated_at`

func scanCase(row pgx.Row) (cases.Case, error) {
	var c cases.Case
	var summary, ownerID pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.ULID, &c.URI, &c.Title, &summary, &c.Status, &ownerID, &createdAt, &updatedAt)
	if err != nil {
		return cases.Case{}, err
	}
	c.Summary = summary.String
	c.OwnerID = ownerID.String
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}

func (r *CaseRepository) Create(ctx context.Context, record cases.Case) (cases.Case, error) {
	queryer := r.queryer()

	const query = `
		INSERT INTO cases (ulid, uri, title, summary, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING ` + caseColumns

	created, err := scanCase(queryer.QueryRow(ctx, query,
		record.ULID, record.URI, record.Title, record.Summary, string(record.Status), record.OwnerID))
	if err != nil {
		return cases.Case{}, fmt.Errorf("insert case: %w", err)
	}
	return created, nil
}

func (r *CaseRepository) GetByULID(ctx context.Context, ulid string) (*cases.Case, error) {
	queryer := r.queryer()

	const query = `SELECT ` + caseColumns + ` FROM cases WHERE ulid = $1`

	found, err := scanCase(queryer.QueryRow(ctx, query, strings.ToUpper(ulid)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cases.ErrNoCase
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return &found, nil
}

func (r *CaseRepository) List(ctx context.Context, filters cases.Filters, paginationArgs cases.Pagination) (cases.ListResult, error) {
	queryer := r.queryer()

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 50
	}

	var conditions []string
	var args []any

	if filters.Status != "" {
		args = append(args, string(filters.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Query != "" {
		args = append(args, "%"+filters.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", len(args), len(args)))
	}
	if strings.TrimSpace(paginationArgs.After) != "" {
		cursor, err := pagination.DecodeCaseCursor(paginationArgs.After)
		if err != nil {
			return cases.ListResult{}, err
		}
		args = append(args, cursor.Timestamp.UTC())
		tsArg := len(args)
		args = append(args, strings.ToUpper(cursor.ULID))
		conditions = append(conditions, fmt.Sprintf("(created_at, ulid) < ($%d, $%d)", tsArg, len(args)))
	}

	query := `SELECT ` + caseColumns + ` FROM cases`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, ulid DESC LIMIT $%d", len(args))

	rows, err := queryer.Query(ctx, query, args...)
	if err != nil {
		return cases.ListResult{}, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	items := make([]cases.Case, 0, limit)
	for rows.Next() {
		item, err := scanCase(rows)
		if err != nil {
			return cases.ListResult{}, fmt.Errorf("scan case: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return cases.ListResult{}, fmt.Errorf("list cases: %w", err)
	}

	result := cases.ListResult{Cases: items}
	if len(items) > limit {
		result.Cases = items[:limit]
		last := result.Cases[limit-1]
		result.NextCursor = pagination.EncodeCaseCursor(last.CreatedAt, last.ULID)
	}
	return result, nil
}

func (r *CaseRepository) UpdateStatus(ctx context.Context, ulid string, status cases.CaseStatus) (*cases.Case, error) {
	queryer := r.queryer()

	const query = `
		UPDATE cases
		SET status = $2, updated_at = now()
		WHERE ulid = $1
		RETURNING ` + caseColumns

	updated, err := scanCase(queryer.QueryRow(ctx, query, strings.ToUpper(ulid), string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cases.ErrNoCase
		}
		return nil, fmt.Errorf("update case status: %w", err)
	}
	return &updated, nil
}
