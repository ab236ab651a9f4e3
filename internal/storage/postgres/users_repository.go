package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/episteme/server/internal/auth"
	"github.com/episteme/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ storage.UserRepository = (*UserRepository)(nil)
var _ auth.PrincipalDirectory = (*UserRepository)(nil)

// FindBySubject resolves a token subject to an active principal. Inactive
// users are treated the same as missing ones.
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*auth.Principal, error) {
	queryer := r.queryer()

	const query = `
		SELECT id, email, display_name, role
		FROM users
		WHERE id = $1 AND is_active`

	var principal auth.Principal
	err := queryer.QueryRow(ctx, query, subject).
		Scan(&principal.ID, &principal.Email, &principal.DisplayName, &principal.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return &principal, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*storage.User, error) {
	queryer := r.queryer()

	const query = `
		SELECT id, email, display_name, role, password_hash, is_active, created_at
		FROM users
		WHERE lower(email) = lower($1)`

	user, err := scanUser(queryer.QueryRow(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoUser
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user storage.User) (storage.User, error) {
	queryer := r.queryer()

	const query = `
		INSERT INTO users (email, display_name, role, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, display_name, role, password_hash, is_active, created_at`

	created, err := scanUser(queryer.QueryRow(ctx, query,
		strings.TrimSpace(user.Email), user.DisplayName, user.Role, user.PasswordHash, user.IsActive))
	if err != nil {
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func scanUser(row pgx.Row) (storage.User, error) {
	var user storage.User
	var createdAt pgtype.Timestamptz
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.Role,
		&user.PasswordHash, &user.IsActive, &createdAt)
	if err != nil {
		return storage.User{}, err
	}
	user.CreatedAt = createdAt.Time
	return user, nil
}
