package postgres

import (
	"context"
	"fmt"

	"github.com/episteme/server/internal/domain/briefs"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements storage.Repository with a PostgreSQL backend.
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Cases() cases.Repository {
	return &CaseRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Briefs() briefs.Repository {
	return &BriefRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Passages() storage.PassageRepository {
	return &PassageRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Users() storage.UserRepository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

// WithTx executes fn within one database transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// queryer is satisfied by both the pool and an active transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type CaseRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CaseRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type BriefRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *BriefRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type PassageRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *PassageRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
