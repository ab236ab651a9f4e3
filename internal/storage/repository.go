package storage

import (
	"context"
	"errors"
	"time"

	"github.com/episteme/server/internal/auth"
	"github.com/episteme/server/internal/domain/briefs"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/domain/search"
)

// Repository groups data access by domain.
type Repository interface {
	Cases() cases.Repository
	Events() events.Repository
	Briefs() briefs.Repository
	Passages() PassageRepository
	Users() UserRepository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

// ErrNoPassage is returned when an event has no embeddable passage.
var ErrNoPassage = errors.New("passage not found")

// PassageSource is the raw material for one embedding job.
type PassageSource struct {
	EventULID string
	CaseULID  string
	Text      string
}

// PassageRepository stores passage vectors and answers nearest-neighbor
// queries over them.
type PassageRepository interface {
	SourceForEvent(ctx context.Context, eventULID string) (PassageSource, error)
	StoreVector(ctx context.Context, eventULID string, vector []float32) error
	Nearest(ctx context.Context, vector []float32, limit int) ([]search.Hit, error)
}

// User is a row in the principal directory.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// ErrNoUser is returned for lookups that match no user row.
var ErrNoUser = errors.New("user not found")

// UserRepository is the principal directory plus the operations the CLI
// needs to seed it. FindBySubject satisfies auth.PrincipalDirectory.
type UserRepository interface {
	FindBySubject(ctx context.Context, subject string) (*auth.Principal, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (User, error)
}
