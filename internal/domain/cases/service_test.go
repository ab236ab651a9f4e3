package cases

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

type fakeRepo struct {
	byULID  map[string]Case
	created []Case
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byULID: map[string]Case{}}
}

func (r *fakeRepo) Create(_ context.Context, record Case) (Case, error) {
	r.created = append(r.created, record)
	r.byULID[record.ULID] = record
	return record, nil
}

func (r *fakeRepo) GetByULID(_ context.Context, ulid string) (*Case, error) {
	record, ok := r.byULID[ulid]
	if !ok {
		return nil, ErrNoCase
	}
	return &record, nil
}

func (r *fakeRepo) List(context.Context, Filters, Pagination) (ListResult, error) {
	result := ListResult{}
	for _, record := range r.byULID {
		result.Cases = append(result.Cases, record)
	}
	return result, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, ulid string, status CaseStatus) (*Case, error) {
	record, ok := r.byULID[ulid]
	if !ok {
		return nil, ErrNoCase
	}
	record.Status = status
	r.byULID[ulid] = record
	return &record, nil
}

func TestServiceCreate(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, "https://episteme.example")

	created, err := service.Create(context.Background(), CaseInput{Title: "  Ergot outbreaks in 1951  "})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}
	if created.Title != "Ergot outbreaks in 1951" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Status != StatusOpen {
		t.Fatalf("expected new case to be open, got %s", created.Status)
	}
	if created.URI != "https://episteme.example/cases/"+created.ULID {
		t.Fatalf("unexpected case uri %s", created.URI)
	}
}

func TestServiceCreateRequiresTitle(t *testing.T) {
	service := NewService(newFakeRepo(), "https://episteme.example")
	if _, err := service.Create(context.Background(), CaseInput{Title: "   "}); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestServiceGetNotFound(t *testing.T) {
	service := NewService(newFakeRepo(), "https://episteme.example")

	_, err := service.Get(context.Background(), "01J8ZQ6W8E3Y4V5T6R7S8D9FAB")
	kind, ok := KindOf(err)
	if !ok || kind != KindCaseNotFound {
		t.Fatalf("expected case_not_found, got %v", err)
	}
}

func TestServiceTransitions(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, "https://episteme.example")

	created, err := service.Create(context.Background(), CaseInput{Title: "Voynich provenance"})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}

	closed, err := service.Close(context.Background(), created.ULID)
	if err != nil {
		t.Fatalf("close case: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}

	archived, err := service.Archive(context.Background(), created.ULID)
	if err != nil {
		t.Fatalf("archive case: %v", err)
	}
	if archived.Status != StatusArchived {
		t.Fatalf("expected archived, got %s", archived.Status)
	}
}

func TestParseFilters(t *testing.T) {
	values := url.Values{}
	values.Set("status", "open")
	values.Set("q", "alchemy")
	values.Set("limit", "25")

	filters, pagination, err := ParseFilters(values)
	if err != nil {
		t.Fatalf("parse filters: %v", err)
	}
	if filters.Status != StatusOpen || filters.Query != "alchemy" || pagination.Limit != 25 {
		t.Fatalf("unexpected parse result: %#v %#v", filters, pagination)
	}
}

func TestParseFiltersRejectsBadStatus(t *testing.T) {
	values := url.Values{}
	values.Set("status", "simmering")

	_, _, err := ParseFilters(values)
	var filterErr FilterError
	if !errors.As(err, &filterErr) || filterErr.Field != "status" {
		t.Fatalf("expected status filter error, got %v", err)
	}
}
