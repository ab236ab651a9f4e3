package cases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/episteme/server/internal/domain/ids"
)

const maxTitleLength = 500

type Service struct {
	repo    Repository
	baseURL string
}

func NewService(repo Repository, baseURL string) *Service {
	return &Service{repo: repo, baseURL: baseURL}
}

func (s *Service) Create(ctx context.Context, input CaseInput) (*Case, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("title exceeds %d characters", maxTitleLength)
	}

	caseULID, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint case ulid: %w", err)
	}
	uri, err := ids.CaseURI(s.baseURL, caseULID)
	if err != nil {
		return nil, fmt.Errorf("build case uri: %w", err)
	}

	created, err := s.repo.Create(ctx, Case{
		ULID:    caseULID,
		URI:     uri,
		Title:   title,
		Summary: strings.TrimSpace(input.Summary),
		Status:  StatusOpen,
	})
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return &created, nil
}

func (s *Service) Get(ctx context.Context, ulid string) (*Case, error) {
	record, err := s.repo.GetByULID(ctx, ids.Normalize(ulid))
	if err != nil {
		if errors.Is(err, ErrNoCase) {
			return nil, CaseNotFound(ids.Normalize(ulid))
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 50
	}
	if pagination.Limit > 200 {
		pagination.Limit = 200
	}
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) Close(ctx context.Context, ulid string) (*Case, error) {
	return s.transition(ctx, ulid, StatusClosed)
}

func (s *Service) Archive(ctx context.Context, ulid string) (*Case, error) {
	return s.transition(ctx, ulid, StatusArchived)
}

func (s *Service) transition(ctx context.Context, ulid string, status CaseStatus) (*Case, error) {
	updated, err := s.repo.UpdateStatus(ctx, ids.Normalize(ulid), status)
	if err != nil {
		if errors.Is(err, ErrNoCase) {
			return nil, CaseNotFound(ids.Normalize(ulid))
		}
		return nil, fmt.Errorf("update case status: %w", err)
	}
	return updated, nil
}

// FilterError reports an invalid listing parameter with its field name.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters extracts listing filters and pagination from query values.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{}
	pagination := Pagination{Limit: 50}

	if status := strings.TrimSpace(values.Get("status")); status != "" {
		candidate := CaseStatus(status)
		if !ValidStatus(candidate) {
			return filters, pagination, FilterError{Field: "status", Message: "must be open, closed, or archived"}
		}
		filters.Status = candidate
	}

	filters.Query = strings.TrimSpace(values.Get("q"))
	pagination.After = strings.TrimSpace(values.Get("cursor"))

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filters, pagination, FilterError{Field: "limit", Message: "must be a positive integer"}
		}
		if limit > 200 {
			limit = 200
		}
		pagination.Limit = limit
	}

	return filters, pagination, nil
}
